package cache

import "fmt"

type Prefix string

const (
	// OptOuts is the set of phone numbers known to be opted out.
	OptOuts Prefix = "optouts"
	// GatewayStatus holds the latest raw status payload per gateway SID.
	GatewayStatus Prefix = "gateway_status"
)

func (p Prefix) Key(id string) string {
	return fmt.Sprintf("%s:%s", p, id)
}
