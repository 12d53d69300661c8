package models

// Resource is a learning link attached to a topic or project
// (title, url, platform, type).
type Resource map[string]string

type Topic struct {
	ID            string     `bson:"_id" json:"id"`
	Title         string     `bson:"title" json:"title"`
	Description   string     `bson:"description" json:"description"`
	Difficulty    string     `bson:"difficulty" json:"difficulty"`
	Duration      string     `bson:"duration" json:"duration"`
	Prerequisites []string   `bson:"prerequisites" json:"prerequisites"`
	CareerPaths   []string   `bson:"career_paths" json:"career_paths"`
	Resources     []Resource `bson:"resources" json:"resources"`
	Order         int        `bson:"order" json:"order"`
}

type TopicInput struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Difficulty    string     `json:"difficulty"`
	Duration      string     `json:"duration"`
	Prerequisites []string   `json:"prerequisites"`
	CareerPaths   []string   `json:"career_paths"`
	Resources     []Resource `json:"resources"`
	Order         int        `json:"order"`
}

const DefaultEstimatedTime = "2-4 weeks"

type Project struct {
	ID            string     `bson:"_id" json:"id"`
	Title         string     `bson:"title" json:"title"`
	Description   string     `bson:"description" json:"description"`
	Difficulty    string     `bson:"difficulty" json:"difficulty"`
	Skills        []string   `bson:"skills" json:"skills"`
	Resources     []Resource `bson:"resources" json:"resources"`
	GithubLink    *string    `bson:"github_link" json:"github_link"`
	EstimatedTime string     `bson:"estimated_time" json:"estimated_time"`
	CareerPaths   []string   `bson:"career_paths" json:"career_paths"`
}

type ProjectInput struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Difficulty    string     `json:"difficulty"`
	Skills        []string   `json:"skills"`
	Resources     []Resource `json:"resources"`
	GithubLink    *string    `json:"github_link"`
	EstimatedTime string     `json:"estimated_time"`
	CareerPaths   []string   `json:"career_paths"`
}

// CatalogFilter narrows catalog listings. Empty fields do not filter.
type CatalogFilter struct {
	Difficulty string
	CareerPath string
}

// Stats is the dashboard summary for one user.
type Stats struct {
	TotalTopics        int64 `json:"total_topics"`
	TotalProjects      int64 `json:"total_projects"`
	CompletedTopics    int   `json:"completed_topics"`
	CompletedProjects  int   `json:"completed_projects"`
	InProgressTopics   int   `json:"in_progress_topics"`
	InProgressProjects int   `json:"in_progress_projects"`
	TotalCompleted     int   `json:"total_completed"`
	TotalInProgress    int   `json:"total_in_progress"`
}

// SearchResult groups catalog matches by kind.
type SearchResult struct {
	Topics   []Topic   `json:"topics"`
	Projects []Project `json:"projects"`
}
