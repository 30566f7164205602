// Package config loads and validates Sengled bridge configuration.
//
// Configuration comes from a YAML file with environment variable
// overrides for secrets and deployment-specific values:
//
//	cloud:
//	  account:
//	    username: "user@example.com"   # or SENGLED_USERNAME
//	    password: ""                   # or SENGLED_PASSWORD
//	  timeout: 10
//	realtime:
//	  endpoint:
//	    host: "us-mqtt.cloud.sengled.com"
//	    port: 443
//	    path: "/mqtt"
//	  reconnect:
//	    enabled: true
//	    initial_delay: 1
//	    max_delay: 60
//	history:
//	  enabled: true
//	  path: "./data/sengled-bridge.db"
//	influxdb:
//	  enabled: false
//	logging:
//	  level: "info"
//	  format: "json"
//
// Never commit credentials to the config file in version control; use the
// SENGLED_USERNAME / SENGLED_PASSWORD environment variables instead.
package config
