// Package security builds client TLS settings for the Redis and Kafka
// connections.
//
//	kafka:
//	  tls:
//	    enabled: true
//	    ca_file: /etc/scribe/ca.pem
package security
