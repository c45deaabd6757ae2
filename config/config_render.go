package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/0xPolygon/cdk-mmr/log"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
	// unquoted vars are turned into strings with this mark so the TOML parser accepts them
	typeMark = ":int"
)

var (
	ErrCycleVars                 = errors.New("cycle vars")
	ErrMissingVars               = errors.New("missing vars")
	ErrUnsupportedConfigFileType = errors.New("unsupported config file type")

	unquotedVarRe = regexp.MustCompile(`=\s*\{\{([^}:]+)\}\}`)
	markedVarRe   = regexp.MustCompile(`=\s*\"\{\{([^}:]+:int)\}\}\"`)
	typeMarkRe    = regexp.MustCompile(`\{\{([^}:]+:int)\}\}`)
)

// FileData is the content of a config file, already in TOML
type FileData struct {
	Name    string
	Content string
}

// Renderer merges config files, later files override earlier ones, and resolves
// the {{var}} references of the result. A var is looked up first in the
// environment as <EnvPrefix>_<var with . replaced by _> and then in the merged config
type Renderer struct {
	Files     []FileData
	LookupEnv func(key string) (string, bool)
	EnvPrefix string
}

func NewRenderer(files []FileData, envPrefix string) *Renderer {
	return &Renderer{
		Files:     files,
		LookupEnv: os.LookupEnv,
		EnvPrefix: envPrefix,
	}
}

// Render merges all the files and resolves the vars
func (r *Renderer) Render() (string, error) {
	merged, err := r.Merge()
	if err != nil {
		return "", fmt.Errorf("fail to merge files. Err: %w", err)
	}
	return r.ResolveVars(merged)
}

// Merge returns the TOML resulting of loading all the files in order
func (r *Renderer) Merge() (string, error) {
	k := koanf.New(".")
	for _, file := range r.Files {
		content := markUnquotedVars(file.Content)
		if err := k.Load(rawbytes.Provider([]byte(content)), toml.Parser()); err != nil {
			log.Errorf("error loading file %s. Err: %v. Content: %s", file.Name, err, content)
			return "", fmt.Errorf("fail to load file %s as toml. Err: %w", file.Name, err)
		}
	}
	merged, err := k.Marshal(toml.Parser())
	if err != nil {
		return "", fmt.Errorf("fail to marshal to toml. Err: %w", err)
	}
	return unquoteMarkedVars(string(merged)), nil
}

// ResolveVars replaces every {{var}} of configData. It fails with ErrMissingVars
// if a var is not defined anywhere and with ErrCycleVars if vars reference each other
func (r *Renderer) ResolveVars(configData string) (string, error) {
	tpl, values, err := r.parse(configData)
	if err != nil {
		return "", err
	}
	rendered := dropTypeMarks(r.fill(tpl, values))
	if missing := r.missingVars(tpl, values); len(missing) > 0 {
		return rendered, fmt.Errorf("missing vars: %v. Err: %w", missing, ErrMissingVars)
	}
	// a var whose value is another var needs more passes: A={{B}} B={{C}} C=1
	resolved, err := r.resolveChained(rendered)
	if err != nil {
		return configData, err
	}
	return resolved, nil
}

// resolveChained renders data until no var is left. Each pass has to reduce the
// number of vars, otherwise they form a cycle (A={{B}} B={{A}})
func (r *Renderer) resolveChained(data string) (string, error) {
	current := unquoteMarkedVars(data)
	pending := r.Vars(current)
	if len(pending) == 0 {
		return data, nil
	}
	log.Debugf("pending vars after first pass: %v", pending)
	for len(pending) > 0 {
		previous := pending
		tpl, values, err := r.parse(current)
		if err != nil {
			return "", fmt.Errorf("fail to parse partially rendered config. Err: %w", err)
		}
		current = dropTypeMarks(unquoteMarkedVars(r.fill(tpl, values)))
		pending = r.Vars(current)
		if len(pending) == len(previous) {
			return data, fmt.Errorf("not resolved cycle vars: %v. Err: %w", pending, ErrCycleVars)
		}
	}
	return current, nil
}

// parse returns data as a template and the values defined in it. Vars must be
// unquoted: A={{B}}, not A="{{B}}"
func (r *Renderer) parse(data string) (*fasttemplate.Template, map[string]interface{}, error) {
	tpl, err := fasttemplate.NewTemplate(data, startTag, endTag)
	if err != nil {
		return nil, nil, fmt.Errorf("fail to load template. Err: %w", err)
	}
	content := markUnquotedVars(data)
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(content)), toml.Parser()); err != nil {
		return nil, nil, fmt.Errorf("error parsing config values. Content: %s. Err: %w", content, err)
	}
	return tpl, k.All(), nil
}

// fill renders tpl, vars without value are left untouched
func (r *Renderer) fill(tpl *fasttemplate.Template, values map[string]interface{}) string {
	return tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		if v, ok := r.lookupEnv(tag); ok {
			return w.Write([]byte(v))
		}
		if v, ok := values[tag]; ok {
			return fmt.Fprintf(w, "%v", v)
		}
		return w.Write([]byte(startTag + tag + endTag))
	})
}

func (r *Renderer) missingVars(tpl *fasttemplate.Template, values map[string]interface{}) []string {
	var missing []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		_, inEnv := r.lookupEnv(tag)
		_, inValues := values[tag]
		if !inEnv && !inValues && !contains(missing, tag) {
			missing = append(missing, tag)
		}
		return 0, nil
	})
	return missing
}

// Vars returns the vars referenced in configData
func (r *Renderer) Vars(configData string) []string {
	tpl, err := fasttemplate.NewTemplate(configData, startTag, endTag)
	if err != nil {
		return []string{}
	}
	var vars []string
	tpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		vars = append(vars, tag)
		return 0, nil
	})
	return vars
}

func (r *Renderer) lookupEnv(tag string) (string, bool) {
	return r.LookupEnv(r.EnvPrefix + "_" + strings.ReplaceAll(tag, ".", "_"))
}

func contains(list []string, search string) bool {
	for _, v := range list {
		if v == search {
			return true
		}
	}
	return false
}

// markUnquotedVars turns A={{B}} into A="{{B:int}}"
func markUnquotedVars(data string) string {
	return unquotedVarRe.ReplaceAllString(data, `= "{{${1}`+typeMark+`}}"`)
}

// unquoteMarkedVars turns A="{{B:int}}" back into A={{B}}
func unquoteMarkedVars(data string) string {
	return markedVarRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := markedVarRe.FindStringSubmatch(match)
		return "= " + startTag + strings.TrimSuffix(submatch[1], typeMark) + endTag
	})
}

// dropTypeMarks turns {{B:int}} into {{B}}
func dropTypeMarks(data string) string {
	return typeMarkRe.ReplaceAllStringFunc(data, func(match string) string {
		submatch := typeMarkRe.FindStringSubmatch(match)
		return startTag + strings.TrimSuffix(submatch[1], typeMark) + endTag
	})
}

func convertFileToToml(fileData string, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case "json":
		k := koanf.New(".")
		if err := k.Load(rawbytes.Provider([]byte(fileData)), json.Parser()); err != nil {
			return fileData, fmt.Errorf("error loading json file. Err: %w", err)
		}
		tomlData, err := toml.Parser().Marshal(k.Raw())
		if err != nil {
			return fileData, fmt.Errorf("error converting json to toml. Err: %w", err)
		}
		return string(tomlData), nil
	case "yml", "yaml", "ini":
		return fileData, fmt.Errorf("cant convert from %s to TOML. Err: %w", fileType, ErrUnsupportedConfigFileType)
	default:
		log.Warnf("filetype %s unknown, assuming is a TOML file", fileType)
		return fileData, nil
	}
}
