package reminder

import "strings"

// Permission is the answer of a notification permission oracle.
type Permission int

const (
	Undetermined Permission = iota
	Granted
	Denied
)

func (p Permission) String() string {
	switch p {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	}
	return "undetermined"
}

// ParsePermission maps "granted" and "denied" to their values; anything else
// is Undetermined.
func ParsePermission(s string) Permission {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "granted", "yes", "true":
		return Granted
	case "denied", "no", "false":
		return Denied
	}
	return Undetermined
}

// PermissionGate is consulted before every notification. Only Granted lets a
// reminder through.
type PermissionGate interface {
	Permission() Permission
}

// PermissionFunc adapts a func to PermissionGate.
type PermissionFunc func() Permission

func (f PermissionFunc) Permission() Permission { return f() }

// Static returns a gate that always answers p.
func Static(p Permission) PermissionGate {
	return PermissionFunc(func() Permission { return p })
}
