package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	filePrefix = "interview_"
	fileSuffix = ".json"
)

// Store сохраняет отчеты о завершенных интервью в JSON файлы
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// SaveReport сохраняет отчет в JSON файл
func (s *Store) SaveReport(report *InterviewReport) error {
	if report.InterviewID == "" {
		return fmt.Errorf("report has no interview id")
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	path := s.path(report.InterviewID)
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// LoadReport загружает отчет из JSON файла
func (s *Store) LoadReport(interviewID string) (*InterviewReport, error) {
	path := s.path(interviewID)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var report InterviewReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}

	return &report, nil
}

// ListReports возвращает ID всех сохраненных интервью
func (s *Store) ListReports() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", s.dir, err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix))
	}
	sort.Strings(ids)

	return ids, nil
}

func (s *Store) path(interviewID string) string {
	// ID приходит из uuid, но имя файла все равно очищается от разделителей пути
	safe := filepath.Base(filepath.Clean("/" + interviewID))
	return filepath.Join(s.dir, filePrefix+safe+fileSuffix)
}
