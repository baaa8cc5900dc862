package workflow

// Rule is an immutable status-authority record for one (stage, status) pair.
type Rule struct {
	Stage  Stage
	Status Status

	// SetBy is the role that owns this status. Admin may always act in its
	// place: the domain model has Admin acting on behalf of University and
	// Immigration.
	SetBy Role

	// AllowedNext lists the statuses reachable from this one through the
	// normal graph. Cross-stage moves are expressed by naming a status that
	// belongs to the next stage; there is no raw stage decrement.
	AllowedNext []Status

	// RequiresDocuments gates entry into this status on the mandatory
	// document checklist of the application's current stage.
	RequiresDocuments []DocumentType

	RequiresReason        bool
	RequiresAdminApproval bool
	IsTerminal            bool

	// EstimatedDurationDays is informational, surfaced on dashboards.
	EstimatedDurationDays int

	// MaxStuckDurationHours flags the application as stale on the monitoring
	// view once exceeded. It never triggers a transition.
	MaxStuckDurationHours int

	// SystemAutoTriggerAfterHours, when non-zero, lets the periodic sweep
	// escalate to AutoTriggerTarget after that many hours without a change.
	SystemAutoTriggerAfterHours int
	AutoTriggerTarget           Status

	NextActor  Role
	NextAction string

	AdminDisplayName   string
	PartnerDisplayName string
}

// Requirements is the document/reason gate for entering a status.
type Requirements struct {
	RequiresDocuments []DocumentType
	RequiresReason    bool
}

// TransitionOption is one action a role may take from the current status,
// rendered as a button by the UI.
type TransitionOption struct {
	Key         Status `json:"key"`
	DisplayName string `json:"displayName"`
}

// Matrix is the process-wide immutable status-authority table, loaded once at
// startup. All lookups are pure.
type Matrix struct {
	rules map[Status]*Rule
}

// NewMatrix builds a matrix from rule rows. Duplicate statuses panic: the
// table is static configuration and a duplicate is a programming error.
func NewMatrix(rules []Rule) *Matrix {
	m := &Matrix{rules: make(map[Status]*Rule, len(rules))}
	for i := range rules {
		r := rules[i]
		if _, dup := m.rules[r.Status]; dup {
			panic("workflow: duplicate matrix status " + string(r.Status))
		}
		m.rules[r.Status] = &r
	}
	return m
}

// Rule returns the authority record for (stage, status). Unknown pairs yield
// a CONFIGURATION_ERROR.
func (m *Matrix) Rule(stage Stage, status Status) (*Rule, error) {
	r, ok := m.rules[status]
	if !ok {
		return nil, ErrConfiguration(stage, status)
	}
	if r.Stage != StageAny && r.Stage != stage {
		return nil, ErrConfiguration(stage, status)
	}
	return r, nil
}

// StageOf returns the stage a status belongs to. Stage-agnostic statuses
// (on_hold, cancelled) report StageAny.
func (m *Matrix) StageOf(status Status) (Stage, error) {
	r, ok := m.rules[status]
	if !ok {
		return 0, ErrConfiguration(StageAny, status)
	}
	return r.Stage, nil
}

// Authorized reports whether role may set the target status. Admin has
// system-wide override authority.
func (m *Matrix) Authorized(role Role, target *Rule) bool {
	return role == RoleAdmin || role == target.SetBy
}

// CanTransition reports whether role may move an application at
// (stage, fromStatus) to toStatus through the normal graph.
func (m *Matrix) CanTransition(stage Stage, from, to Status, role Role) (bool, error) {
	fromRule, err := m.Rule(stage, from)
	if err != nil {
		return false, err
	}
	target, err := m.targetRule(to)
	if err != nil {
		return false, err
	}
	allowed := false
	for _, next := range fromRule.AllowedNext {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, nil
	}
	return m.Authorized(role, target), nil
}

// Requirements returns the entry gate for (stage, status).
func (m *Matrix) Requirements(stage Stage, status Status) (Requirements, error) {
	r, err := m.Rule(stage, status)
	if err != nil {
		return Requirements{}, err
	}
	return Requirements{
		RequiresDocuments: r.RequiresDocuments,
		RequiresReason:    r.RequiresReason,
	}, nil
}

// IsTerminal reports whether (stage, status) ends the workflow.
func (m *Matrix) IsTerminal(stage Stage, status Status) (bool, error) {
	r, err := m.Rule(stage, status)
	if err != nil {
		return false, err
	}
	return r.IsTerminal, nil
}

// AvailableTransitions lists the normal-graph actions a role may take from
// (stage, status), for rendering as action buttons.
func (m *Matrix) AvailableTransitions(stage Stage, status Status, role Role) ([]TransitionOption, error) {
	r, err := m.Rule(stage, status)
	if err != nil {
		return nil, err
	}
	options := make([]TransitionOption, 0, len(r.AllowedNext))
	for _, next := range r.AllowedNext {
		target, err := m.targetRule(next)
		if err != nil {
			return nil, err
		}
		if !m.Authorized(role, target) {
			continue
		}
		options = append(options, TransitionOption{
			Key:         next,
			DisplayName: m.displayFor(target, role),
		})
	}
	return options, nil
}

// DisplayName returns role-specific explanatory text for a status. Roles
// other than partner see the admin wording.
func (m *Matrix) DisplayName(stage Stage, status Status, role Role) (string, error) {
	r, err := m.Rule(stage, status)
	if err != nil {
		return "", err
	}
	return m.displayFor(r, role), nil
}

// Statuses returns every status the matrix defines, in no particular order.
func (m *Matrix) Statuses() []Status {
	out := make([]Status, 0, len(m.rules))
	for s := range m.rules {
		out = append(out, s)
	}
	return out
}

func (m *Matrix) targetRule(status Status) (*Rule, error) {
	r, ok := m.rules[status]
	if !ok {
		return nil, ErrConfiguration(StageAny, status)
	}
	return r, nil
}

func (m *Matrix) displayFor(r *Rule, role Role) string {
	if role == RolePartner && r.PartnerDisplayName != "" {
		return r.PartnerDisplayName
	}
	return r.AdminDisplayName
}
