// Package config loads the gateway configuration.
//
// Values are resolved in this order, later sources winning:
//
//  1. Defaults (defaults.go)
//  2. The YAML file passed with --config
//  3. Environment variables named PARACORD_SECTION_FIELD, for example
//     PARACORD_SERVER_LISTEN_ADDRESS or PARACORD_AUTH_JWT_SECRET
//  4. Validation, which collects every FieldError before failing
//
// A minimal file:
//
//	server:
//	  public_url: "https://chat.example.com"
//	auth:
//	  jwt_secret: "change-me"
//	signaling:
//	  api_key: "devkey"
//	  api_secret: "devsecret"
//
// The process-wide value is installed with Initialize and read with
// GetConfig. Tests build a Config with Default and pass it explicitly.
package config
