package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Configuration (E100-E199)

	"E100": {
		Category: CategoryConfig,
		Message:  "Config file not readable",
		Detail:   "shirtform.json exists but could not be read.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "shirtform.json is not valid JSON or has fields of the wrong type.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid environment file",
		Detail:   "The .env file could not be parsed.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn or error.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Invalid log format",
		Detail:   "log.format must be text or json.",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Invalid validation mode",
		Detail:   "validation.mode must be sync or async.",
	},
	"E106": {
		Category: CategoryConfig,
		Message:  "Invalid server setting",
		Detail:   "A server address, timeout or size limit is out of range.",
	},
	"E107": {
		Category: CategoryConfig,
		Message:  "Invalid metrics path",
		Detail:   "metrics.path must start with a slash.",
	},
	"E108": {
		Category: CategoryConfig,
		Message:  "Invalid environment variable",
		Detail:   "A SHIRTFORM_* variable holds a value that cannot be parsed.",
	},

	// Schema and catalog (E200-E299)

	"E200": {
		Category: CategorySchema,
		Message:  "Schema file not readable",
	},
	"E201": {
		Category: CategorySchema,
		Message:  "Invalid schema file",
		Detail:   "The schema must list fields with ordered rules. Known rules are required, min, max, oneOf, minItems and each.",
	},
	"E202": {
		Category: CategoryCatalog,
		Message:  "Catalog file not readable",
	},
	"E203": {
		Category: CategoryCatalog,
		Message:  "Invalid catalog file",
		Detail:   "The catalog must list animals with unique ids and names, and shirt sizes.",
	},
	"E204": {
		Category: CategoryCatalog,
		Message:  "Schema and catalog disagree",
		Detail:   "The allowed values in the schema must be exactly the catalog's animal ids and shirt size codes.",
	},

	// CLI and input files (E300-E399)

	"E300": {
		Category: CategoryInput,
		Message:  "Values file not readable",
	},
	"E301": {
		Category: CategoryInput,
		Message:  "Invalid values file",
		Detail:   "Values files hold fullName, shirtSize and animals as YAML or JSON.",
	},
	"E302": {
		Category: CategoryInput,
		Message:  "Form is not valid",
		Detail:   "One or more fields failed validation.",
	},
	"E303": {
		Category: CategoryCLI,
		Message:  "Aborted",
		Detail:   "Input was cancelled before the form was submitted.",
	},
	"E304": {
		Category: CategoryCLI,
		Message:  "Server failed",
	},
	"E305": {
		Category: CategoryCLI,
		Message:  "Unsupported output format",
		Detail:   "Output format must be yaml or json.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
