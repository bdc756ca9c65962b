// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package command

import (
	"sort"
	"strings"
	"unicode"
)

// =============================================================================
// SLASH COMMAND DEFINITION
// =============================================================================

// SlashCommand describes one slash command and how its arguments map
// onto a Descriptor.
type SlashCommand struct {
	// Name is the primary command name (e.g., "/note")
	Name string

	// Aliases are alternative names (e.g., "/n")
	Aliases []string

	// Description is shown in help
	Description string

	// Usage shows argument syntax (e.g., "/note <create|list|view|delete> [arg]")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Build converts validated args into a descriptor
	Build func(args []string, raw string) Descriptor
}

// ArgDef defines an argument for a slash command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Values restricts the argument to an enum when non-empty
	Values []string

	// Description explains the argument
	Description string
}

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError reports a bad or missing slash argument. It is data,
// not control flow: the pipeline folds it into an error Result.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	return msg
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the slash commands by name and alias.
type Registry struct {
	commands map[string]*SlashCommand
	aliases  map[string]*SlashCommand
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*SlashCommand),
		aliases:  make(map[string]*SlashCommand),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *SlashCommand) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *SlashCommand {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*SlashCommand {
	cmds := make([]*SlashCommand, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// =============================================================================
// SLASH PARSING
// =============================================================================

// IsSlash reports whether the input starts a slash command.
func IsSlash(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// ParseSlash parses slash input into a descriptor. Unknown roots yield
// a KindUnknown descriptor echoing the raw text. Argument problems
// surface as *ValidationError alongside the descriptor.
func (r *Registry) ParseSlash(input string) (Descriptor, error) {
	input = strings.TrimSpace(input)

	tokens := splitCommandLine(input)
	if len(tokens) == 0 {
		return Descriptor{Kind: KindUnknown, Raw: input}, nil
	}

	cmd := r.Get(tokens[0])
	if cmd == nil {
		return Descriptor{Kind: KindUnknown, Raw: input}, nil
	}

	args := tokens[1:]
	if err := validateArgs(cmd, args); err != nil {
		return Descriptor{Kind: KindUnknown, Raw: input}, err
	}

	return cmd.Build(args, input), nil
}

// validateArgs checks required and enum arguments.
func validateArgs(cmd *SlashCommand, args []string) error {
	for i, def := range cmd.Args {
		if def.Required && i >= len(args) {
			return &ValidationError{
				Command:  cmd.Name,
				Arg:      def.Name,
				Message:  "required argument missing",
				Expected: def.Description,
			}
		}
		if i < len(args) && len(def.Values) > 0 {
			valid := false
			for _, v := range def.Values {
				if strings.EqualFold(args[i], v) {
					valid = true
					break
				}
			}
			if !valid {
				return &ValidationError{
					Command:  cmd.Name,
					Arg:      def.Name,
					Message:  "invalid value",
					Got:      args[i],
					Expected: strings.Join(def.Values, ", "),
				}
			}
		}
	}
	return nil
}

// splitCommandLine splits a command line into tokens, respecting
// single and double quotes.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingleQuote, inDoubleQuote bool

	for i := 0; i < len(input); i++ {
		char := rune(input[i])

		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote

		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote

		case char == '\\' && i+1 < len(input) && (inDoubleQuote || inSingleQuote):
			next := rune(input[i+1])
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(char)
			}

		case unicode.IsSpace(char) && !inSingleQuote && !inDoubleQuote:
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func joinFrom(args []string, from int) string {
	if from >= len(args) {
		return ""
	}
	return strings.Join(args[from:], " ")
}

// rawAfterToken returns everything after the first occurrence of token
// in raw, preserving the original text (quotes included).
func rawAfterToken(raw, token string) string {
	idx := strings.Index(strings.ToLower(raw), " "+token)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(raw[idx+len(token)+1:])
}

func (r *Registry) registerBuiltins() {
	r.Register(&SlashCommand{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{Kind: KindHelp, Raw: raw}
		},
	})

	r.Register(&SlashCommand{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit aura",
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{Kind: KindQuit, Raw: raw}
		},
	})

	r.Register(&SlashCommand{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "Clear conversation history",
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{Kind: KindClear, Raw: raw}
		},
	})

	r.Register(&SlashCommand{
		Name:        "/config",
		Description: "Show or edit configuration",
		Usage:       "/config [show|reset|save <json>|<key> [value]]",
		Build: func(args []string, raw string) Descriptor {
			d := Descriptor{Kind: KindConfig, Action: "show", Raw: raw}
			switch {
			case len(args) == 0:
			case args[0] == "show":
			case args[0] == "reset":
				d.Action = "reset"
			case args[0] == "save":
				// The JSON parameter comes from the raw line: the
				// tokenizer strips double quotes, which would mangle it.
				d.Action = "save"
				d.Query = rawAfterToken(raw, "save")
			case len(args) == 1:
				d.Action = "get"
				d.Query = args[0]
			default:
				d.Action = "set"
				d.Query = args[0]
				d.Args = args[1:]
			}
			return d
		},
	})

	r.Register(&SlashCommand{
		Name:        "/note",
		Description: "Manage notes",
		Usage:       "/note <create|list|view|delete> [arg]",
		Args: []ArgDef{
			{
				Name:        "action",
				Required:    true,
				Values:      []string{"create", "list", "view", "delete"},
				Description: "create, list, view or delete",
			},
		},
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{
				Kind:   KindNote,
				Action: strings.ToLower(args[0]),
				Query:  joinFrom(args, 1),
				Raw:    raw,
			}
		},
	})

	r.Register(&SlashCommand{
		Name:        "/screenshot",
		Aliases:     []string{"/shot"},
		Description: "Take a screenshot",
		Usage:       "/screenshot [full|region|window]",
		Args: []ArgDef{
			{
				Name:        "mode",
				Values:      []string{"full", "region", "window"},
				Description: "capture mode",
			},
		},
		Build: func(args []string, raw string) Descriptor {
			d := Descriptor{Kind: KindScreenshot, Action: "full", Raw: raw}
			if len(args) > 0 {
				d.Action = strings.ToLower(args[0])
			}
			return d
		},
	})

	r.Register(&SlashCommand{
		Name:        "/search",
		Description: "Search the web",
		Usage:       "/search <query>",
		Args: []ArgDef{
			{Name: "query", Required: true, Description: "search query"},
		},
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{
				Kind:  KindSearch,
				Query: joinFrom(args, 0),
				Raw:   raw,
			}
		},
	})

	r.Register(&SlashCommand{
		Name:        "/voice",
		Description: "Control speech output",
		Usage:       "/voice <on|off|rate> [value]",
		Args: []ArgDef{
			{
				Name:        "action",
				Required:    true,
				Values:      []string{"on", "off", "rate"},
				Description: "on, off or rate",
			},
		},
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{
				Kind:   KindVoice,
				Action: strings.ToLower(args[0]),
				Query:  joinFrom(args, 1),
				Raw:    raw,
			}
		},
	})

	r.Register(&SlashCommand{
		Name:        "/profile",
		Description: "Manage user profiles",
		Usage:       "/profile <create|switch|delete|list> [name]",
		Args: []ArgDef{
			{
				Name:        "action",
				Required:    true,
				Values:      []string{"create", "switch", "delete", "list"},
				Description: "create, switch, delete or list",
			},
		},
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{
				Kind:   KindProfile,
				Action: strings.ToLower(args[0]),
				Query:  joinFrom(args, 1),
				Raw:    raw,
			}
		},
	})

	r.Register(&SlashCommand{
		Name:        "/autonomous",
		Aliases:     []string{"/auto"},
		Description: "Control the autonomous scheduler",
		Usage:       "/autonomous <on|off|interval|status> [minutes]",
		Args: []ArgDef{
			{
				Name:        "action",
				Required:    true,
				Values:      []string{"on", "off", "interval", "status"},
				Description: "on, off, interval or status",
			},
		},
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{
				Kind:   KindAutonomous,
				Action: strings.ToLower(args[0]),
				Query:  joinFrom(args, 1),
				Raw:    raw,
			}
		},
	})

	r.Register(&SlashCommand{
		Name:        "/web",
		Aliases:     []string{"/open"},
		Description: "Open a URL in the browser",
		Usage:       "/web <url>",
		Args: []ArgDef{
			{Name: "url", Required: true, Description: "URL to open"},
		},
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{Kind: KindWeb, Query: args[0], Raw: raw}
		},
	})

	r.Register(&SlashCommand{
		Name:        "/retry",
		Aliases:     []string{"/r"},
		Description: "Repeat the previous turn",
		Usage:       "/retry [extra context]",
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{Kind: KindRetry, Query: joinFrom(args, 0), Raw: raw}
		},
	})

	r.Register(&SlashCommand{
		Name:        "/app",
		Description: "Open or close an application",
		Usage:       "/app <open|close> <name>",
		Args: []ArgDef{
			{
				Name:        "action",
				Required:    true,
				Values:      []string{"open", "close"},
				Description: "open or close",
			},
			{Name: "name", Required: true, Description: "application name"},
		},
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{
				Kind:   KindSystem,
				Action: strings.ToLower(args[0]),
				Query:  joinFrom(args, 1),
				Raw:    raw,
			}
		},
	})

	r.Register(&SlashCommand{
		Name:        "/xgo",
		Description: "Control the XGO device bridge",
		Usage:       "/xgo <connect|disconnect|status> [address]",
		Args: []ArgDef{
			{
				Name:        "action",
				Required:    true,
				Values:      []string{"connect", "disconnect", "status"},
				Description: "connect, disconnect or status",
			},
		},
		Build: func(args []string, raw string) Descriptor {
			return Descriptor{
				Kind:   KindXGO,
				Action: strings.ToLower(args[0]),
				Query:  joinFrom(args, 1),
				Raw:    raw,
			}
		},
	})
}
