package entity

import (
	"fmt"
	"strings"
	"time"
)

// ModelKey identifies a business model the discovery engine can recommend
type ModelKey string

// Declaration order doubles as the tie-break order
const (
	ModelEcom  ModelKey = "ecom"
	ModelCopy  ModelKey = "copy"
	ModelSMMA  ModelKey = "smma"
	ModelSales ModelKey = "sales"
	ModelSaaS  ModelKey = "saas"
)

// ModelOrder lists every model in declaration order
var ModelOrder = []ModelKey{ModelEcom, ModelCopy, ModelSMMA, ModelSales, ModelSaaS}

var modelNames = map[ModelKey]string{
	ModelEcom:  "Ecommerce",
	ModelCopy:  "Copywriting",
	ModelSMMA:  "SMMA",
	ModelSales: "High-Ticket Sales",
	ModelSaaS:  "SaaS",
}

// DisplayName returns the human readable model name
func (m ModelKey) DisplayName() string {
	if name, ok := modelNames[m]; ok {
		return name
	}
	return string(m)
}

// Validate checks that the key is one of the declared models
func (m ModelKey) Validate() error {
	if _, ok := modelNames[m]; !ok {
		return fmt.Errorf("%w: unknown model %q", ErrInvalidParameter, m)
	}
	return nil
}

// BusinessType identifies a curriculum
type BusinessType string

const (
	BusinessTypeEcommerce   BusinessType = "ecommerce"
	BusinessTypeSMMA        BusinessType = "smma"
	BusinessTypeSaaS        BusinessType = "saas"
	BusinessTypeCopywriting BusinessType = "copywriting"
	BusinessTypeSales       BusinessType = "sales"
)

var modelBusinessTypes = map[ModelKey]BusinessType{
	ModelEcom:  BusinessTypeEcommerce,
	ModelCopy:  BusinessTypeCopywriting,
	ModelSMMA:  BusinessTypeSMMA,
	ModelSales: BusinessTypeSales,
	ModelSaaS:  BusinessTypeSaaS,
}

// BusinessType maps a recommended model to the curriculum that serves it
func (m ModelKey) BusinessType() BusinessType {
	return modelBusinessTypes[m]
}

// Validate checks that the business type has a curriculum
func (bt BusinessType) Validate() error {
	switch bt {
	case BusinessTypeEcommerce, BusinessTypeSMMA, BusinessTypeSaaS, BusinessTypeCopywriting, BusinessTypeSales:
		return nil
	default:
		return fmt.Errorf("%w: unknown business type %q", ErrInvalidParameter, bt)
	}
}

// StageKey identifies one phase of a curriculum
type StageKey string

const (
	StagePreQualification StageKey = "pre_qualification"
	StageScaling          StageKey = "scaling"
)

// Category is the answer key of a discovery question
type Category string

const (
	CategoryCapital            Category = "capital"
	CategoryTimePerWeek        Category = "timePerWeek"
	CategoryTargetProfit       Category = "targetProfit"
	CategoryNaturalSkill       Category = "naturalSkill"
	CategoryOpenToSales        Category = "openToSales"
	CategoryContentCreation    Category = "contentCreation"
	CategoryEnjoyWriting       Category = "enjoyWriting"
	CategoryTechProblemSolving Category = "techProblemSolving"
	CategoryClientPreference   Category = "clientPreference"
	CategoryTeamPreference     Category = "teamPreference"
)

// AnswerValue is a normalized categorical answer, never free text
type AnswerValue string

// Question is one fixed discovery question
type Question struct {
	Index    int      `json:"index"`
	Category Category `json:"category"`
	Text     string   `json:"text"`
}

// UserAnswers maps categories to normalized answers
type UserAnswers map[Category]AnswerValue

// Clone returns an independent copy
func (a UserAnswers) Clone() UserAnswers {
	out := make(UserAnswers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// ScoreBreakdown holds the per-model totals
type ScoreBreakdown map[ModelKey]int

// QuestionnaireState is the persisted discovery progress of a user
type QuestionnaireState struct {
	CurrentQuestionIndex int         `json:"current_question_index"`
	UserAnswers          UserAnswers `json:"user_answers"`
	IsComplete           bool        `json:"is_complete"`
}

// BusinessRecommendation is a derived snapshot of a scoring run
type BusinessRecommendation struct {
	RecommendedModels []ModelKey     `json:"recommended_models"`
	ScoreBreakdown    ScoreBreakdown `json:"score_breakdown"`
}

// IsTie reports whether more than one model shares the top score
func (r BusinessRecommendation) IsTie() bool {
	return len(r.RecommendedModels) > 1
}

// Label returns the winner's display name, or all tied names joined by "or"
func (r BusinessRecommendation) Label() string {
	names := make([]string, 0, len(r.RecommendedModels))
	for _, m := range r.RecommendedModels {
		names = append(names, m.DisplayName())
	}
	return strings.Join(names, " or ")
}

// ProjectMemory is the progression state of one project
type ProjectMemory struct {
	BusinessType    BusinessType      `json:"business_type"`
	CurrentStage    StageKey          `json:"current_stage"`
	CurrentStep     string            `json:"current_step"`
	CompletedStages []StageKey        `json:"completed_stages"`
	Outputs         map[string]any    `json:"outputs"`
	Notes           map[string]string `json:"notes"`
	TasksInProgress []string          `json:"tasks_in_progress"`
}

// HasCompleted reports whether the stage was marked completed
func (m *ProjectMemory) HasCompleted(stage StageKey) bool {
	for _, s := range m.CompletedStages {
		if s == stage {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices or maps with m. Output values are copied shallowly.
func (m ProjectMemory) Clone() ProjectMemory {
	out := m
	out.CompletedStages = append(make([]StageKey, 0, len(m.CompletedStages)), m.CompletedStages...)
	out.TasksInProgress = append(make([]string, 0, len(m.TasksInProgress)), m.TasksInProgress...)
	if m.Outputs != nil {
		out.Outputs = make(map[string]any, len(m.Outputs))
		for k, v := range m.Outputs {
			out.Outputs[k] = v
		}
	}
	if m.Notes != nil {
		out.Notes = make(map[string]string, len(m.Notes))
		for k, v := range m.Notes {
			out.Notes[k] = v
		}
	}
	return out
}

// Project is the persisted project row. Version counts saved revisions; an update must
// carry the version the project was read at.
type Project struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Budget    string        `json:"budget,omitempty"`
	Memory    ProjectMemory `json:"memory"`
	Version   int64         `json:"version"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Clone returns a deep copy of the project
func (p *Project) Clone() *Project {
	out := *p
	out.Memory = p.Memory.Clone()
	return &out
}

// Todo is one generated task of a stage
type Todo struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Stage     StageKey  `json:"stage"`
	Task      string    `json:"task"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// ResultFormat is an export format of the project plan
type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatPDF      ResultFormat = "pdf"
	FormatDOCX     ResultFormat = "docx"
)

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatPDF, FormatDOCX:
		return true
	default:
		return false
	}
}

// CurriculumEntry is the shared read-only content of one curriculum stage
type CurriculumEntry struct {
	BusinessType BusinessType `json:"business_type"`
	Stage        StageKey     `json:"stage"`
	Title        string       `json:"title"`
	Objective    string       `json:"objective"`
	Checklist    []string     `json:"checklist"`
	AISupport    []string     `json:"ai_support"`
}

// StageStatus is the state of one stage in a project roadmap
type StageStatus string

const (
	StageStatusCompleted StageStatus = "completed"
	StageStatusCurrent   StageStatus = "current"
	StageStatusUpcoming  StageStatus = "upcoming"
)

// RoadmapStage is one row of a project roadmap
type RoadmapStage struct {
	Stage  StageKey    `json:"stage"`
	Title  string      `json:"title"`
	Status StageStatus `json:"status"`
}
