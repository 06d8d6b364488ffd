package identity

import "strings"

// roleSynonyms maps role names found in legacy tokens and imported user
// records to the canonical roles.
var roleSynonyms = map[string]Role{
	"distributor":   RoleDistributor,
	"admin":         RoleDistributor,
	"owner":         RoleDistributor,
	"seller":        RoleSeller,
	"advisor":       RoleSeller,
	"sales":         RoleSeller,
	"telemarketer":  RoleTelemarketer,
	"telemarketing": RoleTelemarketer,
	"caller":        RoleTelemarketer,
}

// ResolveRole maps a raw role string to a canonical role. The boolean reports
// whether the name was recognized.
func ResolveRole(raw string) (Role, bool) {
	role, ok := roleSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return role, ok
}
