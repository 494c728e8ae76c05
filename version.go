package conduit

// Version is the release of this module. It is overridden at build time with
// -ldflags "-X github.com/aretw0/conduit.Version=...".
var Version = "dev"
