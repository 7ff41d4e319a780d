// Package certs serves TLS certificates that can be replaced on disk
// without restarting the relay.
//
// A Reloader loads a PEM certificate and key pair, validates the leaf, and
// hands it to crypto/tls through GetCertificate. Watch reloads the pair
// when either file is written or replaced; a failed reload keeps the
// previous certificate.
//
//	r, err := certs.NewReloader("tls.crt", "tls.key")
//	if err != nil {
//	    return err
//	}
//	go r.Watch(ctx)
//	ln = tls.NewListener(ln, certs.ServerConfig(r, "1.2"))
package certs
