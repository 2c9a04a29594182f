package skill

// DefaultSynonyms collapses common spellings and abbreviations onto one
// canonical token. Deployments can replace it through configuration.
var DefaultSynonyms = map[string]string{
	"js":                  "javascript",
	"ecmascript":          "javascript",
	"ts":                  "typescript",
	"node":                "node.js",
	"nodejs":              "node.js",
	"react.js":            "react",
	"reactjs":             "react",
	"vue":                 "vue.js",
	"vuejs":               "vue.js",
	"golang":              "go",
	"py":                  "python",
	"python3":             "python",
	"postgres":            "postgresql",
	"psql":                "postgresql",
	"mongo":               "mongodb",
	"k8s":                 "kubernetes",
	"aws cloud":           "aws",
	"amazon web services": "aws",
	"spring":              "spring boot",
	"springboot":          "spring boot",
	"frontend":            "front end",
	"front-end":           "front end",
	"backend":             "back end",
	"back-end":            "back end",
	"ms excel":            "excel",
	"microsoft excel":     "excel",
}
