package model

// Document field names shared across collections
const (
	FieldID        = "_id"
	FieldTenantID  = "cliente_id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldStatus    = "status"
	FieldEmail     = "email"
	FieldDocument  = "documento"
	FieldPassword  = "senha"
	FieldName      = "nome"
	FieldLevel     = "nivel"
	FieldCode      = "codigo"
	FieldToken     = "token"
	FieldTxID      = "transacao_id"
)

// Owner block metadata and property linkage
const (
	FieldOwnerID       = "proprietario_id"
	FieldBlockReason   = "motivo_bloqueio"
	FieldBlockedBy     = "bloqueado_por"
	FieldBlockedAt     = "bloqueado_em"
	FieldUnblockedBy   = "desbloqueado_por"
	FieldUnblockedAt   = "desbloqueado_em"
	FieldAuditAction   = "acao"
	FieldAuditReason   = "motivo"
	FieldAuditActor    = "usuario"
	FieldAuditDate     = "data"
	FieldAuditAffected = "propriedades_afetadas"
)

// Status is the lifecycle state of owners and properties.
type Status string

const (
	StatusActive  Status = "ativo"
	StatusBlocked Status = "bloqueado"
)

// AuditAction names an entry of the audit log.
type AuditAction string

const (
	AuditBlock   AuditAction = "bloqueio"
	AuditUnblock AuditAction = "desbloqueio"
)
