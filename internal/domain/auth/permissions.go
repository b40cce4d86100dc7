package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	ResUsers      = "users"
	ResProjects   = "projects"
	ResTimesheets = "timesheets"
	ResChecklists = "checklists"
	ResLeave      = "leave"
	ResLeaveAdmin = "leave.admin"
	ResSettings   = "settings"
	ResAudit      = "audit"
	ResMetrics    = "metrics"

	ActRead  = "read"
	ActWrite = "write"
)

const policyModel = `[request_definition]
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

var userPolicies = [][]string{
	{RoleUser, ResUsers, ActRead},
	{RoleUser, ResProjects, ActRead},
	{RoleUser, ResTimesheets, ActRead},
	{RoleUser, ResTimesheets, ActWrite},
	{RoleUser, ResChecklists, ActRead},
	{RoleUser, ResChecklists, ActWrite},
	{RoleUser, ResLeave, ActRead},
	{RoleUser, ResLeave, ActWrite},
	{RoleUser, ResSettings, ActRead},
}

// NewEnforcer returns the role policy: admins may do everything and
// inherit the user grants; users get the self-service resources.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("load policy model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	if _, err := e.AddPolicies(userPolicies); err != nil {
		return nil, err
	}
	if _, err := e.AddPolicy(RoleAdmin, "*", "*"); err != nil {
		return nil, err
	}
	if _, err := e.AddGroupingPolicy(RoleAdmin, RoleUser); err != nil {
		return nil, err
	}
	return e, nil
}

func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
