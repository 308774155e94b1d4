// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Table names returned by TableName are unqualified. Repositories always address
// them through a partition scope, which prefixes the schema:
// - identity.go: tenant partition tables (users, roles, user_roles, user_permissions)
// - profile.go: tenant partition profile tables
// - tenancy.go: global partition tables (institutions, plans, plan_permissions)
package models
