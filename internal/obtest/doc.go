// Package obtest contains helpers shared by tests across the module.
package obtest
