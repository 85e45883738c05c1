// Package google loads the OAuth client identity used to talk to Google APIs.
//
// The identity comes from the client secret JSON file downloaded from the
// Google Cloud console. Both the "installed" and "web" application shapes are
// accepted, as is a flat object carrying the same fields. The identity is read
// once per IdentityLoader and cached for the lifetime of the process.
package google
