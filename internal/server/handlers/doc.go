// Package handlers implements the WebForge HTTP intake endpoints.
package handlers
