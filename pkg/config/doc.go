// Package config provides configuration management for the chat relay.
//
// Configuration is read from YAML with environment variable overrides. The
// backend registry may be given inline or in a separate JSON file:
//
//	{"ollama_instances": [{"name": "local", "url": "http://localhost:11434", "priority": 1}]}
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("config.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Variables follow the convention CHATRELAY_SECTION_FIELD:
//
//   - CHATRELAY_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - CHATRELAY_INSTANCES_FILE replaces the instance registry
//   - CHATRELAY_TRANSLATION_PROVIDER_URL overrides translation.provider_url
//   - CHATRELAY_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Values from YAML file (plus the instances file)
//  2. Default values for anything left unset
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
//	if err := config.Initialize("config.yaml"); err != nil {
//		log.Fatal(err)
//	}
//	cfg := config.GetConfig()
package config
