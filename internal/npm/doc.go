// Package npm searches the npm registry for n8n community node packages,
// resolves versions, and downloads and unpacks their tarballs so the node
// descriptions inside can be extracted.
package npm
