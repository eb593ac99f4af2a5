package security

import "fmt"

// GSSAPI is RFB security type 129 (custom, Kerberos-backed). No
// Kerberos/GSSAPI library appears in this module's dependency surface, so
// there is no ecosystem library to wire here. This is a thin placeholder
// matching the token-exchange-until-CONTINUE_NEEDED-clears shape of a real
// GSSAPI accept loop, without a real mechanism underneath, left as a
// documented gap rather than a fabricated dependency.
type GSSAPIContext struct {
	Established bool
	Principal   string
}

// AcceptSecContext processes one inbound GSSAPI token; callers send any
// non-empty output token back to the peer, and keep accepting until
// Established is true. This stub never completes without a running
// Kerberos stack and always returns an error, so a connector built
// without one fails the Kerberos security type cleanly instead of
// silently accepting.
func (c *GSSAPIContext) AcceptSecContext(token []byte) (output []byte, err error) {
	return nil, fmt.Errorf("security: gssapi/kerberos is not available in this build (no mechanism library wired)")
}

// DisplayName returns the authenticated principal once Established.
func (c *GSSAPIContext) DisplayName() string {
	return c.Principal
}
