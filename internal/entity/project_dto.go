package entity

type CreateProjectRequest struct {
	UserID               string       `json:"user_id"`
	BusinessType         BusinessType `json:"business_type,omitempty"`
	Model                ModelKey     `json:"model,omitempty"`
	Budget               string       `json:"budget,omitempty"`
	SkipPreQualification bool         `json:"skip_pre_qualification,omitempty"`
}

type AdvanceStageRequest struct {
	FromStage StageKey `json:"from_stage"`
}

type JumpStageRequest struct {
	Stage StageKey `json:"stage"`
}

type UpdateStepRequest struct {
	Step string `json:"step"`
}

type RecordOutputsRequest struct {
	Outputs map[string]any `json:"outputs"`
}

type RecordNoteRequest struct {
	Text string `json:"text"`
}

type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history,omitempty"`
}

type ChatResponse struct {
	Content string   `json:"content"`
	Stage   StageKey `json:"stage"`
}

// StageView is the caller-facing projection of the current curriculum entry
type StageView struct {
	BusinessType    BusinessType `json:"business_type"`
	Stage           StageKey     `json:"stage"`
	Title           string       `json:"title"`
	Objective       string       `json:"objective"`
	Checklist       []string     `json:"checklist"`
	AISupport       []string     `json:"ai_support"`
	CurrentStep     string       `json:"current_step"`
	CompletedStages []StageKey   `json:"completed_stages"`
}

type AdvanceResult struct {
	Project  *Project `json:"project"`
	Advanced bool     `json:"advanced"`
	Terminal bool     `json:"terminal"`
}

type CompleteTaskResult struct {
	Todo          *Todo    `json:"todo"`
	Project       *Project `json:"project"`
	StageComplete bool     `json:"stage_complete"`
	Advanced      bool     `json:"advanced"`
}

type ProjectDTO struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	BusinessType    BusinessType      `json:"business_type"`
	Budget          string            `json:"budget,omitempty"`
	CurrentStage    StageKey          `json:"current_stage"`
	CurrentStep     string            `json:"current_step"`
	CompletedStages []StageKey        `json:"completed_stages"`
	Outputs         map[string]any    `json:"outputs"`
	Notes           map[string]string `json:"notes"`
	TasksInProgress []string          `json:"tasks_in_progress"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
