package domain

const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

const (
	DepositStatusPending   = "PENDING"
	DepositStatusCompleted = "COMPLETED"
	DepositStatusFailed    = "FAILED"
)

const (
	WithdrawalStatusPending    = "PENDING"
	WithdrawalStatusProcessing = "PROCESSING"
	WithdrawalStatusCompleted  = "COMPLETED"
	WithdrawalStatusFailed     = "FAILED"
)

// Ledger entry types. Amounts are signed: credits positive, debits negative.
const (
	TxTypeDeposit            = "DEPOSIT"
	TxTypeWithdrawal         = "WITHDRAWAL"
	TxTypeWithdrawalReversal = "WITHDRAWAL_REVERSAL"
)

const (
	NotifTypeDepositConfirmed = "DEPOSIT_CONFIRMED"
	NotifTypeDepositFailed    = "DEPOSIT_FAILED"
	NotifTypeWithdrawalDone   = "WITHDRAWAL_COMPLETED"
	NotifTypeWithdrawalFailed = "WITHDRAWAL_FAILED"
)
