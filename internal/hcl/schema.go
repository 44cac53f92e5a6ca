package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. Unknown blocks and attributes are rejected by the decoder.
type fileRoot struct {
	Services  []*serviceBlock  `hcl:"service,block"`
	Endpoints []*endpointBlock `hcl:"endpoint,block"`
	Checks    []*checkBlock    `hcl:"check,block"`
}

type serviceBlock struct {
	Name    string `hcl:"name,label"`
	Host    string `hcl:"host,optional"`
	Port    int    `hcl:"port,optional"`
	Metrics bool   `hcl:"metrics,optional"`
}

type endpointBlock struct {
	Name        string         `hcl:"name,label"`
	Description string         `hcl:"description,optional"`
	Payload     hcl.Expression `hcl:"payload,optional"`
}

type checkBlock struct {
	Name         string `hcl:"name,label"`
	Description  string `hcl:"description,optional"`
	Kind         string `hcl:"kind"`
	URL          string `hcl:"url"`
	Timeout      string `hcl:"timeout,optional"`
	ExpectStatus int    `hcl:"expect_status,optional"`
	Namespace    string `hcl:"namespace,optional"`
}
