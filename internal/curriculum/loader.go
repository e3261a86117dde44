package curriculum

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"

	"github.com/futig/coach-backend/internal/entity"
)

//go:embed content/*.yaml
var embedded embed.FS

type stageDoc struct {
	Key         entity.StageKey   `yaml:"key"`
	Optional    bool              `yaml:"optional"`
	Title       string            `yaml:"title"`
	Objective   string            `yaml:"objective"`
	Checklist   []string          `yaml:"checklist"`
	AISupport   []string          `yaml:"ai_support"`
	StepPrompts map[string]string `yaml:"step_prompts"`
}

func (d stageDoc) common() stageDoc { return d }

func (d stageDoc) toBase(bt entity.BusinessType) baseEntry {
	return baseEntry{
		businessType: bt,
		stage:        d.Key,
		title:        d.Title,
		objective:    d.Objective,
		checklist:    d.Checklist,
		aiSupport:    d.AISupport,
		stepPrompts:  d.StepPrompts,
		optional:     d.Optional,
	}
}

type ecommerceStageDoc struct {
	stageDoc        `yaml:",inline"`
	ProductCriteria []string `yaml:"product_criteria"`
	MinimumBudget   string   `yaml:"minimum_budget"`
}

type smmaStageDoc struct {
	stageDoc          `yaml:",inline"`
	OutreachChecklist []string `yaml:"outreach_checklist"`
}

type saasStageDoc struct {
	stageDoc            `yaml:",inline"`
	ValidationChecklist []string `yaml:"validation_checklist"`
	TechStack           []string `yaml:"tech_stack"`
}

type copywritingStageDoc struct {
	stageDoc        `yaml:",inline"`
	PortfolioPieces []string `yaml:"portfolio_pieces"`
}

type salesStageDoc struct {
	stageDoc         `yaml:",inline"`
	ScriptFrameworks []string `yaml:"script_frameworks"`
}

type stageSource interface {
	common() stageDoc
}

type curriculumDoc[S stageSource] struct {
	BusinessType entity.BusinessType `yaml:"business_type"`
	DisplayName  string              `yaml:"display_name"`
	Banner       string              `yaml:"banner"`
	Stages       []S                 `yaml:"stages"`
}

// decoders know the extension fields of each business type. Unknown fields are rejected
// so a field written for one business type cannot silently land in another.
var decoders = map[entity.BusinessType]func([]byte) (*Curriculum, error){
	entity.BusinessTypeEcommerce: func(data []byte) (*Curriculum, error) {
		return decode(data, func(base baseEntry, s ecommerceStageDoc) Entry {
			return &EcommerceEntry{baseEntry: base, ProductCriteria: s.ProductCriteria, MinimumBudget: s.MinimumBudget}
		})
	},
	entity.BusinessTypeSMMA: func(data []byte) (*Curriculum, error) {
		return decode(data, func(base baseEntry, s smmaStageDoc) Entry {
			return &SMMAEntry{baseEntry: base, OutreachChecklist: s.OutreachChecklist}
		})
	},
	entity.BusinessTypeSaaS: func(data []byte) (*Curriculum, error) {
		return decode(data, func(base baseEntry, s saasStageDoc) Entry {
			return &SaaSEntry{baseEntry: base, ValidationChecklist: s.ValidationChecklist, TechStack: s.TechStack}
		})
	},
	entity.BusinessTypeCopywriting: func(data []byte) (*Curriculum, error) {
		return decode(data, func(base baseEntry, s copywritingStageDoc) Entry {
			return &CopywritingEntry{baseEntry: base, PortfolioPieces: s.PortfolioPieces}
		})
	},
	entity.BusinessTypeSales: func(data []byte) (*Curriculum, error) {
		return decode(data, func(base baseEntry, s salesStageDoc) Entry {
			return &SalesEntry{baseEntry: base, ScriptFrameworks: s.ScriptFrameworks}
		})
	},
}

func decode[S stageSource](data []byte, build func(baseEntry, S) Entry) (*Curriculum, error) {
	var doc curriculumDoc[S]
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}

	c := &Curriculum{
		BusinessType: doc.BusinessType,
		DisplayName:  doc.DisplayName,
		Banner:       doc.Banner,
		entries:      make(map[entity.StageKey]Entry, len(doc.Stages)),
	}
	for _, s := range doc.Stages {
		d := s.common()
		if _, dup := c.entries[d.Key]; dup {
			return nil, fmt.Errorf("%s: duplicate stage %q", doc.BusinessType, d.Key)
		}
		c.sequence = append(c.sequence, d.Key)
		c.entries[d.Key] = build(d.toBase(doc.BusinessType), s)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the curriculum bundled with the binary.
func Load() (*KnowledgeBase, error) {
	sub, err := fs.Sub(embedded, "content")
	if err != nil {
		return nil, fmt.Errorf("open embedded curriculum: %w", err)
	}
	return LoadFS(sub)
}

// LoadFS reads every *.yaml file at the root of fsys. Each business type must be
// defined exactly once.
func LoadFS(fsys fs.FS) (*KnowledgeBase, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list curriculum files: %w", err)
	}

	kb := &KnowledgeBase{curricula: make(map[entity.BusinessType]*Curriculum, len(decoders))}
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		c, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		if _, dup := kb.curricula[c.BusinessType]; dup {
			return nil, fmt.Errorf("%s: business type %q defined twice", path.Base(name), c.BusinessType)
		}
		kb.curricula[c.BusinessType] = c
	}

	var missing []error
	for bt := range decoders {
		if _, ok := kb.curricula[bt]; !ok {
			missing = append(missing, fmt.Errorf("no curriculum for business type %q", bt))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}

	return kb, nil
}

func parse(data []byte) (*Curriculum, error) {
	var head struct {
		BusinessType entity.BusinessType `yaml:"business_type"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode curriculum header: %w", err)
	}

	decodeFn, ok := decoders[head.BusinessType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown business type %q", entity.ErrInvalidFormat, head.BusinessType)
	}
	return decodeFn(data)
}
