package model

import "strings"

// State is the canonical worksheet: the fully normalized, current-schema
// shape every other package trusts. Instances are produced by
// internal/state and owned by the caller from then on.
type State struct {
	Meta          Meta       `json:"meta"`
	Pre           Preface    `json:"pre"`
	Impact        Impact     `json:"impact"`
	Ops           Ops        `json:"ops"`
	Table         []TableRow `json:"table"`
	Causes        []Cause    `json:"causes"`
	LikelyCauseID *string    `json:"likelyCauseId"`
	Steps         Steps      `json:"steps"`
	// Actions is nil when the action-items feature was never used for this
	// worksheet. An empty Actions value means "used, currently empty".
	Actions    *Actions   `json:"actions,omitempty"`
	Appearance Appearance `json:"appearance"`
	Handover   Handover   `json:"handover"`
}

type Meta struct {
	Version int     `json:"version"`
	SavedAt *string `json:"savedAt"` // RFC3339, or null when never saved
}

// Preface is the plain-language intake description of the incident.
type Preface struct {
	OneLine  string `json:"oneLine"`
	Symptoms string `json:"symptoms"`
	Affected string `json:"affected"`
	Started  string `json:"started"`
	Context  string `json:"context"`
}

type Impact struct {
	Now    string `json:"now"`
	Future string `json:"future"`
	Time   string `json:"time"`
}

// Ops carries the operational metadata: bridge/comms bookkeeping,
// detection and evidence flags, and the containment state.
type Ops struct {
	Bridge         string `json:"bridge"`
	Owner          string `json:"owner"`
	Severity       string `json:"severity"`
	ContainSummary string `json:"containSummary"`

	CommCadence        string `json:"commCadence"`
	CommNextDueISO     string `json:"commNextDueIso"`
	CommNextUpdateTime string `json:"commNextUpdateTime"`
	TableFocusMode     string `json:"tableFocusMode"`

	DetectMonitoring bool `json:"detectMonitoring"`
	DetectCustomer   bool `json:"detectCustomer"`
	DetectInternal   bool `json:"detectInternal"`
	EvidenceLogs     bool `json:"evidenceLogs"`
	EvidenceMetrics  bool `json:"evidenceMetrics"`
	EvidenceTraces   bool `json:"evidenceTraces"`
	EvidenceDeploy   bool `json:"evidenceDeploy"`
	EvidenceConfig   bool `json:"evidenceConfig"`
	EvidenceVendor   bool `json:"evidenceVendor"`

	ContainStatus ContainStatus `json:"containStatus"`
	CommLog       []CommEntry   `json:"commLog"`
}

// CommEntry is one communication-log line. Legacy snapshots stored bare
// strings; those normalize to a Message-only entry.
type CommEntry struct {
	At      string `json:"at,omitempty"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// TableRow is one is/is-not comparison row. Rows are opaque to the
// pipeline and pass through normalization unvalidated; the CLI writes the
// conventional keys dimension/is/isNot/distinction/change.
type TableRow = map[string]any

// Cause is a candidate root-cause hypothesis with its supporting findings.
type Cause struct {
	ID          string             `json:"id"`
	Suspect     string             `json:"suspect"`
	Accusation  string             `json:"accusation"`
	Impact      string             `json:"impact"`
	SummaryText string             `json:"summaryText"`
	Confidence  Confidence         `json:"confidence"`
	Evidence    string             `json:"evidence"`
	Findings    map[string]Finding `json:"findings"`

	// Transient UI flags. Persisted for drawer restore, not meaningful data.
	Editing     bool `json:"editing"`
	TestingOpen bool `json:"testingOpen"`
}

// Finding is a classified note attached to a cause: does this cause
// explain the observed fact? A finding with neither a mode nor a note is
// pruned on serialization.
type Finding struct {
	Mode FindingMode `json:"mode"`
	Note string      `json:"note"`
}

// Empty reports whether the finding carries no information and should be
// dropped when causes are serialized.
func (f Finding) Empty() bool {
	return f.Mode == FindingModeNone && strings.TrimSpace(f.Note) == ""
}

type Steps struct {
	Items      []Step `json:"items"`
	DrawerOpen bool   `json:"drawerOpen"`
}

type Step struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// Actions is the action-item follow-up list. All items in one list share
// the container's analysisId; normalization enforces that.
type Actions struct {
	AnalysisID string   `json:"analysisId"`
	Items      []Action `json:"items"`
}

type Action struct {
	ID         string `json:"id"`
	AnalysisID string `json:"analysisId"`
	Title      string `json:"title"`
	Owner      string `json:"owner"`
	Due        string `json:"due"`
	Notes      string `json:"notes"`
	Done       bool   `json:"done"`
}

type Appearance struct {
	Theme Theme `json:"theme"`
}

// Handover holds the five fixed handover note sections. The set of
// sections is closed; normalization drops anything else.
type Handover struct {
	Summary   string `json:"summary"`
	Status    string `json:"status"`
	Risks     string `json:"risks"`
	NextSteps string `json:"nextSteps"`
	Contacts  string `json:"contacts"`
}

// HandoverSections lists the section ids in display order.
var HandoverSections = []string{"summary", "status", "risks", "nextSteps", "contacts"}

func (h *Handover) Set(section, note string) bool {
	switch section {
	case "summary":
		h.Summary = note
	case "status":
		h.Status = note
	case "risks":
		h.Risks = note
	case "nextSteps":
		h.NextSteps = note
	case "contacts":
		h.Contacts = note
	default:
		return false
	}
	return true
}

func (h Handover) Get(section string) (string, bool) {
	switch section {
	case "summary":
		return h.Summary, true
	case "status":
		return h.Status, true
	case "risks":
		return h.Risks, true
	case "nextSteps":
		return h.NextSteps, true
	case "contacts":
		return h.Contacts, true
	default:
		return "", false
	}
}

type FindingMode string

const (
	FindingModeNone FindingMode = ""
	FindingYes      FindingMode = "yes"
	FindingPartial  FindingMode = "partial"
	FindingNo       FindingMode = "no"
	FindingAssume   FindingMode = "assumption"
)

// ParseFindingMode maps s onto the closed finding-mode set. Unknown values
// come back as the empty mode.
func ParseFindingMode(s string) FindingMode {
	switch m := FindingMode(strings.ToLower(strings.TrimSpace(s))); m {
	case FindingYes, FindingPartial, FindingNo, FindingAssume:
		return m
	default:
		return FindingModeNone
	}
}

type Confidence string

const (
	ConfidenceNone   Confidence = ""
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ParseConfidence accepts only the exact tokens low|medium|high; anything
// else (including cased or padded variants) normalizes to none.
func ParseConfidence(s string) Confidence {
	switch c := Confidence(s); c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return c
	default:
		return ConfidenceNone
	}
}

type ContainStatus string

const (
	ContainNone           ContainStatus = ""
	ContainAssessing      ContainStatus = "assessing"
	ContainStoppingImpact ContainStatus = "stoppingImpact"
	ContainStabilized     ContainStatus = "stabilized"
	ContainFixInProgress  ContainStatus = "fixInProgress"
	ContainRestoring      ContainStatus = "restoring"
	ContainMonitoring     ContainStatus = "monitoring"
	ContainClosed         ContainStatus = "closed"
)

// legacyContainStatus maps pre-v1 containment names onto the current set.
var legacyContainStatus = map[string]ContainStatus{
	"none":       ContainAssessing,
	"mitigation": ContainStabilized,
	"restore":    ContainRestoring,
}

// ParseContainStatus validates s against the containment enum, falling
// back to the legacy-name map. Unrecognized values normalize to none.
func ParseContainStatus(s string) ContainStatus {
	switch c := ContainStatus(strings.TrimSpace(s)); c {
	case ContainAssessing, ContainStoppingImpact, ContainStabilized,
		ContainFixInProgress, ContainRestoring, ContainMonitoring, ContainClosed:
		return c
	}
	if c, ok := legacyContainStatus[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c
	}
	return ContainNone
}

// ContainStatuses lists the current enum members in lifecycle order.
var ContainStatuses = []ContainStatus{
	ContainAssessing,
	ContainStoppingImpact,
	ContainStabilized,
	ContainFixInProgress,
	ContainRestoring,
	ContainMonitoring,
	ContainClosed,
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme recognizes the dark token; everything else is light.
func ParseTheme(s string) Theme {
	if strings.ToLower(strings.TrimSpace(s)) == string(ThemeDark) {
		return ThemeDark
	}
	return ThemeLight
}
