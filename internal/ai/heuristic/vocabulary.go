package heuristic

// DefaultVocabulary is the list of skills recognized in free text. Entries are
// lowercase and matched case-insensitively, except caseSensitive ones.
var DefaultVocabulary = []string{
	// languages
	"python", "java", "javascript", "typescript", "golang", "rust", "ruby", "php", "scala",
	"kotlin", "swift", "objective-c", "c++", "c#", "perl", "haskell", "elixir", "erlang",
	"clojure", "dart", "lua", "matlab", "bash", "shell", "powershell", "sql", "nosql", "graphql",
	"html", "css", "sass",
	// frameworks and libraries
	"django", "flask", "fastapi", "spring", "spring boot", "rails", "ruby on rails", "laravel",
	"express", "react", "react native", "angular", "vue", "svelte", "next.js", "node.js",
	".net", "asp.net", "pandas", "numpy", "scikit-learn", "tensorflow", "pytorch", "keras",
	"spark", "hadoop", "airflow", "dbt", "celery", "grpc", "protobuf", "rest", "redux",
	// data stores and messaging
	"postgresql", "mysql", "sqlite", "oracle", "mongodb", "redis", "cassandra", "elasticsearch",
	"dynamodb", "clickhouse", "snowflake", "bigquery", "kafka", "rabbitmq", "nats",
	// infrastructure
	"aws", "gcp", "azure", "docker", "kubernetes", "helm", "terraform", "ansible", "pulumi",
	"linux", "nginx", "prometheus", "grafana", "jenkins", "gitlab", "github actions",
	"git", "microservices", "serverless",
	// practices and domains
	"machine learning", "deep learning", "nlp", "computer vision", "data analysis",
	"data engineering", "statistics", "agile", "scrum", "tdd", "devops", "sre", "security",
	"system design", "distributed systems", "leadership", "communication", "mentoring",
	"project management", "product management", "figma", "excel", "tableau", "power bi",
}

// caseSensitive holds skills that are ordinary words or letters in lowercase.
var caseSensitive = []string{"Go", "R", "C"}
