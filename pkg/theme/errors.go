package theme

import "errors"

// ErrUnknownTheme is returned by Set for names other than dark and bright.
var ErrUnknownTheme = errors.New("invalid theme name. Use 'dark' or 'bright'")
