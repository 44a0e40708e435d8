package config

// Config представляет конфигурацию интервью
type Config struct {
	InterviewConfig InterviewConfig `yaml:"interview_config"`
	QuestionBank    string          `yaml:"question_bank"`
	Persona         string          `yaml:"persona"`
	Seed            int64           `yaml:"seed,omitempty"`
}

// InterviewConfig задает, сколько вопросов каждой сложности попадет в интервью
type InterviewConfig struct {
	Easy   int `yaml:"easy"`
	Medium int `yaml:"medium"`
	Hard   int `yaml:"hard"`
}

// Методы для удобного доступа к конфигурации
func (c *Config) GetTotalQuestions() int {
	return c.InterviewConfig.Easy + c.InterviewConfig.Medium + c.InterviewConfig.Hard
}

func (c *Config) GetMix() map[string]int {
	return map[string]int{
		"easy":   c.InterviewConfig.Easy,
		"medium": c.InterviewConfig.Medium,
		"hard":   c.InterviewConfig.Hard,
	}
}

func (c *Config) GetPersona() string {
	return c.Persona
}
