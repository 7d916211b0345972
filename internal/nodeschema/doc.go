// Package nodeschema defines the node-schema record shared by every harvester,
// the file naming conventions used for record files, and validation of record
// files against an embedded JSON schema.
package nodeschema
