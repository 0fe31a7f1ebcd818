package node

// Context names with a node API endpoint.
const (
	ContextInfo     = "info"
	ContextKeystore = "keystore"
	ContextAVM      = "avm"
	ContextPlatform = "platform"
	ContextHealth   = "health"
)

type endpoint struct {
	path      string
	namespace string
}

var endpoints = map[string]endpoint{
	ContextInfo:     {path: "/ext/info", namespace: "info"},
	ContextKeystore: {path: "/ext/keystore", namespace: "keystore"},
	ContextAVM:      {path: "/ext/bc/X", namespace: "avm"},
	ContextPlatform: {path: "/ext/bc/P", namespace: "platform"},
	ContextHealth:   {path: "/ext/health", namespace: "health"},
}

// HasEndpoint reports whether context maps to a node API.
func HasEndpoint(context string) bool {
	_, ok := endpoints[context]
	return ok
}
