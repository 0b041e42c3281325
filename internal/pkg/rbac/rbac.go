// Package rbac builds the in-memory casbin enforcer that guards the proxy
// endpoints. Policies are "role:object:action" lines where object and action
// may be "*".
package rbac

import (
	"errors"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/samber/lo"
)

// ErrInvalidPolicy is returned for a line that is not role:object:action.
var ErrInvalidPolicy = errors.New("rbac: policy must be role:object:action")

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// Enforcer answers whether a role may perform act on obj.
type Enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

// NewEnforcer loads policies into a fresh enforcer with no persistence.
func NewEnforcer(policies []string) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	rules, err := ParsePolicies(policies)
	if err != nil {
		return nil, err
	}

	if len(rules) > 0 {
		if _, err := e.AddPolicies(rules); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// ParsePolicies splits and trims each line, dropping blanks and duplicates.
func ParsePolicies(lines []string) ([][]string, error) {
	var rules [][]string
	for _, line := range lo.Compact(lo.Map(lines, func(l string, _ int) string { return strings.TrimSpace(l) })) {
		parts := lo.Map(strings.Split(line, ":"), func(p string, _ int) string { return strings.TrimSpace(p) })
		if len(parts) != 3 || lo.Contains(parts, "") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPolicy, line)
		}
		rules = append(rules, parts)
	}

	return lo.UniqBy(rules, func(r []string) string { return strings.Join(r, ":") }), nil
}
