package prompts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/intern-engine/internal/models"
)

// Profile describes one task domain for prompt assembly
type Profile struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	NameTR string   `yaml:"name_tr"`
	Focus  []string `yaml:"focus"`
}

// Library holds the domain profiles used to build task prompts. Profiles
// ship with built-in defaults and can be overridden from a YAML directory.
type Library struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

// NewLibrary creates a library seeded with the built-in profiles
func NewLibrary() *Library {
	l := &Library{
		profiles: make(map[string]*Profile),
	}
	for _, p := range defaultProfiles() {
		l.profiles[p.ID] = p
	}
	return l
}

// LoadFromDir overrides built-in profiles with YAML files from dir
func (l *Library) LoadFromDir(dir string) error {
	slog.Info("loading domain profiles from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := l.loadFromFile(file); err != nil {
			slog.Warn("failed to load profile", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("domain profiles loaded", "count", loaded, "total_files", len(files))
	return nil
}

func (l *Library) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile file: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to parse profile YAML: %w", err)
	}

	if p.ID == "" {
		return fmt.Errorf("profile %s has no id", path)
	}

	l.mu.Lock()
	l.profiles[p.ID] = &p
	l.mu.Unlock()

	return nil
}

// Get retrieves a profile by domain id, nil if unknown
func (l *Library) Get(domain string) *Profile {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.profiles[domain]
}

// List returns all profile ids
func (l *Library) List() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.profiles))
	for id := range l.profiles {
		ids = append(ids, id)
	}
	return ids
}

// BuildTaskPrompt assembles the user message for task generation
func (l *Library) BuildTaskPrompt(domain, level, language string) string {
	profile := l.Get(domain)

	if language == "tr" {
		name := domain
		if profile != nil && profile.NameTR != "" {
			name = profile.NameTR
		}
		return fmt.Sprintf("Alan: %s\nSeviye: %s\n\nBu alan ve seviye için uygun bir staj görevi oluştur. Görev Türkçe olmalı.",
			name, levelNameTR(level))
	}

	var b strings.Builder
	b.WriteString("Role:\nAct as an Internship Task Designer.\n\n")
	fmt.Fprintf(&b, "Intern Level:\n%s\n\n", level)
	b.WriteString("Domain Focus:\n")
	if profile != nil {
		for _, f := range profile.Focus {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	} else {
		fmt.Fprintf(&b, "- %s\n", domain)
	}
	b.WriteString("\nGenerate ONE internship task.")
	return b.String()
}

// BuildEvaluationPrompt assembles the user message for submission scoring
func BuildEvaluationPrompt(task *models.Task, submission, language string) string {
	var b strings.Builder

	if language == "tr" {
		fmt.Fprintf(&b, "Görev: %s\n\nAçıklama: %s\n\nGereksinimler:\n", task.Title, task.Description)
		for _, r := range task.Requirements {
			fmt.Fprintf(&b, "- %s\n", r)
		}
		fmt.Fprintf(&b, "\nStajyerin Teslimi:\n```\n%s\n```\n\nBu teslimi değerlendir ve JSON formatında sonuç ver.", submission)
		return b.String()
	}

	fmt.Fprintf(&b, "Task: %s\n\nDescription: %s\n\nRequirements:\n", task.Title, task.Description)
	for _, r := range task.Requirements {
		fmt.Fprintf(&b, "- %s\n", r)
	}
	fmt.Fprintf(&b, "\nStudent Submission:\n```\n%s\n```\n\nEvaluate this submission and return JSON result.", submission)
	return b.String()
}

// EvaluationSystemPrompt returns the evaluator persona for the language
func EvaluationSystemPrompt(language string) string {
	if language == "tr" {
		return EvaluationSystemPromptTR
	}
	return EvaluationSystemPromptEN
}

// TaskDesignerSystemPrompt returns the task designer persona for the language
func TaskDesignerSystemPrompt(language string) string {
	if language == "tr" {
		return TaskDesignerSystemPromptTR
	}
	return TaskDesignerSystemPromptEN
}

// DetectLanguage guesses the prompt language from Turkish-specific
// characters in the text
func DetectLanguage(text string) string {
	if strings.ContainsAny(text, "şğüıöçŞĞÜİÖÇ") {
		return "tr"
	}
	return "en"
}

func levelNameTR(level string) string {
	switch level {
	case models.LevelJunior:
		return "Başlangıç Seviye"
	case models.LevelMid:
		return "Orta Seviye"
	case models.LevelSenior:
		return "İleri Seviye"
	}
	return level
}

func defaultProfiles() []*Profile {
	return []*Profile{
		{
			ID:     models.DomainFrontend,
			Name:   "Frontend Development",
			NameTR: "Frontend Geliştirme",
			Focus: []string{
				"UI development",
				"Component structure",
				"State management",
				"API integration",
				"User experience",
			},
		},
		{
			ID:     models.DomainBackend,
			Name:   "Backend Development",
			NameTR: "Backend Geliştirme",
			Focus: []string{
				"API development",
				"Database usage",
				"Authentication",
				"Business logic",
				"Error handling",
			},
		},
		{
			ID:     models.DomainAI,
			Name:   "AI / Machine Learning",
			NameTR: "Yapay Zeka / Makine Öğrenmesi",
			Focus: []string{
				"Data processing",
				"Model training",
				"Evaluation",
				"Experiment tracking",
			},
		},
		{
			ID:     models.DomainCybersecurity,
			Name:   "Cybersecurity",
			NameTR: "Siber Güvenlik",
			Focus: []string{
				"Threat analysis",
				"Secure design",
				"Vulnerability identification",
			},
		},
	}
}
