package auth

// OpenFGA 对象类型与关系
const (
	ObjectDocument   = "document"
	RelationOwner    = "owner"
	RelationApprover = "approver"
	RelationViewer   = "viewer"
)

// GetPermissionModel 获取 OpenFGA 权限模型定义
func GetPermissionModel() string {
	return `model
  schema 1.1

type user

type document_type
  relations
    define admin: [user]

type document
  relations
    define owner: [user]
    define approver: [user]
    define viewer: [user] or owner or approver`
}
