// Package authz holds the role/operation access policy. Allowed is a pure
// lookup with no side effects; callers check it before touching any store.
package authz

import "github.com/lrivas/postly-be/internal/models"

// Operation names a gated action in the system.
type Operation string

const (
	OpListUsers   Operation = "users.list"
	OpReadUser    Operation = "users.read"
	OpManageUser  Operation = "users.manage" // edit, activate, deactivate
	OpFilterUsers Operation = "users.filter"
	OpListPosts   Operation = "posts.list"
	OpReadPost    Operation = "posts.read"
	OpWritePost   Operation = "posts.write" // create, edit, delete
	OpFilterPosts Operation = "posts.filter"
)

var policy = map[Operation]map[models.Role]bool{
	OpListUsers:   {models.RoleAdmin: true},
	OpReadUser:    {models.RoleAdmin: true},
	OpManageUser:  {models.RoleAdmin: true},
	OpFilterUsers: {models.RoleAdmin: true},
	OpListPosts:   {models.RoleAdmin: true, models.RoleEditor: true, models.RoleLector: true},
	OpReadPost:    {models.RoleAdmin: true, models.RoleEditor: true, models.RoleLector: true},
	OpWritePost:   {models.RoleAdmin: true, models.RoleEditor: true},
	OpFilterPosts: {models.RoleAdmin: true, models.RoleEditor: true, models.RoleLector: true},
}

// Allowed reports whether role may perform op. Unknown roles and unknown
// operations are always denied.
func Allowed(role models.Role, op Operation) bool {
	return policy[op][role]
}

// CanModifyPost reports whether caller may edit or delete post. Ownership
// is required on top of the role gate; admins get no bypass.
func CanModifyPost(caller models.User, post models.Post) bool {
	return Allowed(caller.Role, OpWritePost) && post.UserID == caller.ID
}
