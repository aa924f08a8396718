package observability

// Metric name prefixes
const (
	MetricPrefix = "arena"
)

// Metric names
const (
	// Event metrics
	EventsTotal = MetricPrefix + ".events_total"

	// Match metrics
	MatchesCreatedTotal  = MetricPrefix + ".matches.created_total"
	MatchesSettledTotal  = MetricPrefix + ".matches.settled_total"
	MatchesDisputedTotal = MetricPrefix + ".matches.disputed_total"
	PayoutAmountTotal    = MetricPrefix + ".matches.payout_amount_total"
	PlatformFeeTotal     = MetricPrefix + ".matches.platform_fee_total"

	// Escrow metrics
	CompensationsTotal      = MetricPrefix + ".escrow.compensations_total"
	OperationsRejectedTotal = MetricPrefix + ".operations.rejected_total"

	// Storage metrics
	CASConflictsTotal = MetricPrefix + ".storage.cas_conflicts_total"

	// Reconciler metrics
	ReconcileRunsTotal      = MetricPrefix + ".reconciler.runs_total"
	ReconcileRecoveredTotal = MetricPrefix + ".reconciler.recovered_total"
)

// Label keys
const (
	LabelEventType = "event_type"
	LabelOperation = "operation"
	LabelReason    = "reason"
	LabelKind      = "kind"
	LabelOutcome   = "outcome"
)

// Reconciler outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
