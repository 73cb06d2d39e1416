package security

// In-memory client registry (replace with DB/config later)
type Client struct {
	ID      string
	Secret  string
	Perms   []string // e.g. {"orders.read","settlement.read"}
	Enabled bool
}

var Clients = map[string]Client{
	"storefront":     {ID: "storefront", Secret: "storefront-secret", Perms: []string{"orders.read", "orders.write"}, Enabled: true},
	"partner-portal": {ID: "partner-portal", Secret: "portal-secret", Perms: []string{"orders.read", "settlement.read"}, Enabled: true},
	"back-office":    {ID: "back-office", Secret: "backoffice-secret", Perms: []string{"orders.read", "orders.write", "settlement.read"}, Enabled: true},
}
