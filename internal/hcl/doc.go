// Package hcl implements config.Loader for HCL files.
//
// A configuration is any number of .hcl files holding at most one service
// block plus endpoint and check blocks:
//
//	service "orders" {
//	  port    = 5000
//	  metrics = true
//	}
//
//	endpoint "version" {
//	  description = "build information"
//	  payload     = { version = "1.4.2", region = env.REGION }
//	}
//
//	check "api" {
//	  kind    = "http"
//	  url     = "http://localhost:8080/health"
//	  timeout = "2s"
//	}
//
// Expressions are evaluated with a single variable, env, holding the process
// environment.
package hcl
