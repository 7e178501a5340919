// Package hclplan reads component descriptors from HCL plan files.
//
//	component "oracle" {}
//
//	component "coin" {
//	  depends_on = ["oracle"]
//	  config {
//	    supply        = to_wei("1000000", "ether")
//	    oracle        = component.oracle.handle
//	    initial_price = 2000
//	  }
//	}
//
// Attributes in a config block that reference no component are evaluated
// while loading. A bare `component.<name>.handle` becomes a reference; any
// other expression mentioning components is kept and evaluated at deploy
// time, once the referenced handles exist.
package hclplan
