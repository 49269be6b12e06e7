// Package cme serves the unit's continuing medical education library. The
// content is embedded YAML: modules hold topics, topics hold reading sections
// and a self-assessment quiz.
package cme

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var contentFS embed.FS

// PassMark is the percentage needed to pass a topic quiz.
const PassMark = 70.0

var (
	ErrModuleNotFound = errors.New("cme module not found")
	ErrTopicNotFound  = errors.New("cme topic not found")
)

type Section struct {
	Heading string `yaml:"heading" json:"heading"`
	Body    string `yaml:"body" json:"body"`
}

// Question is one multiple choice item. Answer indexes Options.
type Question struct {
	Question    string   `yaml:"question" json:"question"`
	Options     []string `yaml:"options" json:"options"`
	Answer      int      `yaml:"answer" json:"-"`
	Explanation string   `yaml:"explanation" json:"-"`
}

type Topic struct {
	ID       string     `yaml:"id" json:"id"`
	Title    string     `yaml:"title" json:"title"`
	Summary  string     `yaml:"summary" json:"summary"`
	Sections []Section  `yaml:"sections" json:"sections"`
	Quiz     []Question `yaml:"quiz" json:"quiz"`
}

type Module struct {
	ID          string  `yaml:"id" json:"id"`
	Title       string  `yaml:"title" json:"title"`
	Description string  `yaml:"description" json:"description"`
	Order       int     `yaml:"order" json:"order"`
	Topics      []Topic `yaml:"topics" json:"topics"`
}

// ModuleSummary is a module without its topic bodies.
type ModuleSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TopicCount  int    `json:"topic_count"`
}

// Library is read-only once loaded and safe for concurrent use.
type Library struct {
	modules []Module
	byID    map[string]int
}

// Load parses the embedded content.
func Load() (*Library, error) {
	return LoadFS(contentFS, "content")
}

// LoadFS parses every .yaml file in dir of fsys as one module.
func LoadFS(fsys fs.FS, dir string) (*Library, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read cme content: %w", err)
	}

	lib := &Library{byID: make(map[string]int)}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		var m Module
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		if err := m.validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		lib.modules = append(lib.modules, m)
	}

	sort.SliceStable(lib.modules, func(i, j int) bool { return lib.modules[i].Order < lib.modules[j].Order })
	for i, m := range lib.modules {
		if _, dup := lib.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate module id %q", m.ID)
		}
		lib.byID[m.ID] = i
	}
	return lib, nil
}

func (m *Module) validate() error {
	if m.ID == "" || m.Title == "" {
		return fmt.Errorf("module id and title are required")
	}
	seen := make(map[string]bool)
	for _, t := range m.Topics {
		if t.ID == "" {
			return fmt.Errorf("module %s: topic id is required", m.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("module %s: duplicate topic id %q", m.ID, t.ID)
		}
		seen[t.ID] = true
		for i, q := range t.Quiz {
			if len(q.Options) < 2 {
				return fmt.Errorf("%s/%s question %d: at least two options are required", m.ID, t.ID, i+1)
			}
			if q.Answer < 0 || q.Answer >= len(q.Options) {
				return fmt.Errorf("%s/%s question %d: answer %d out of range", m.ID, t.ID, i+1, q.Answer)
			}
		}
	}
	return nil
}

// ListModules returns module summaries in display order.
func (l *Library) ListModules() []ModuleSummary {
	out := make([]ModuleSummary, 0, len(l.modules))
	for _, m := range l.modules {
		out = append(out, ModuleSummary{ID: m.ID, Title: m.Title, Description: m.Description, TopicCount: len(m.Topics)})
	}
	return out
}

func (q Question) clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

func (t Topic) clone() Topic {
	t.Sections = append([]Section(nil), t.Sections...)
	if t.Quiz != nil {
		quiz := make([]Question, len(t.Quiz))
		for i, q := range t.Quiz {
			quiz[i] = q.clone()
		}
		t.Quiz = quiz
	}
	return t
}

func (m Module) clone() Module {
	if m.Topics != nil {
		topics := make([]Topic, len(m.Topics))
		for i, t := range m.Topics {
			topics[i] = t.clone()
		}
		m.Topics = topics
	}
	return m
}

// GetModule returns a deep copy of the module; callers may modify it.
func (l *Library) GetModule(id string) (*Module, error) {
	i, ok := l.byID[id]
	if !ok {
		return nil, ErrModuleNotFound
	}
	m := l.modules[i].clone()
	return &m, nil
}

// GetTopic returns a deep copy of one topic.
func (l *Library) GetTopic(moduleID, topicID string) (*Topic, error) {
	i, ok := l.byID[moduleID]
	if !ok {
		return nil, ErrModuleNotFound
	}
	for _, t := range l.modules[i].Topics {
		if t.ID == topicID {
			t = t.clone()
			return &t, nil
		}
	}
	return nil, ErrTopicNotFound
}

// Walk calls fn for every topic in display order and stops at the first error.
// fn receives copies.
func (l *Library) Walk(fn func(m *Module, t *Topic) error) error {
	for i := range l.modules {
		m := l.modules[i].clone()
		for j := range m.Topics {
			if err := fn(&m, &m.Topics[j]); err != nil {
				return err
			}
		}
	}
	return nil
}
