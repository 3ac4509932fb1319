package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// CompletionShells lists the shells GenerateCompletion supports.
var CompletionShells = []string{"bash", "zsh", "fish"}

// GenerateCompletion writes a completion script for program to out. Flags
// come from fs; values lists the candidate arguments of flags that take a
// fixed set, such as -mode.
func GenerateCompletion(out io.Writer, shell, program string, fs *flag.FlagSet, values map[string][]string) error {
	switch shell {
	case "bash":
		return generateBashCompletion(out, program, fs, values)
	case "zsh":
		return generateZshCompletion(out, program, fs, values)
	case "fish":
		return generateFishCompletion(out, program, fs, values)
	default:
		return fmt.Errorf("unsupported shell: %s (accepted values: %s)", shell, strings.Join(CompletionShells, ", "))
	}
}

// isBoolFlag reports whether a flag takes no argument.
func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// funcName turns a program name into a shell identifier.
func funcName(program string) string {
	return strings.NewReplacer("-", "_", ".", "_", "/", "_").Replace(program)
}

func generateBashCompletion(out io.Writer, program string, fs *flag.FlagSet, values map[string][]string) error {
	var opts []string
	fs.VisitAll(func(f *flag.Flag) { opts = append(opts, "-"+f.Name) })

	var cases strings.Builder
	fs.VisitAll(func(f *flag.Flag) {
		switch {
		case len(values[f.Name]) > 0:
			fmt.Fprintf(&cases, "        -%s)\n            COMPREPLY=( $(compgen -W %q -- \"${cur}\") )\n            return 0\n            ;;\n",
				f.Name, strings.Join(values[f.Name], " "))
		case f.Name == "config" || f.Name == "output" || f.Name == "o":
			fmt.Fprintf(&cases, "        -%s)\n            COMPREPLY=( $(compgen -f -- \"${cur}\") )\n            return 0\n            ;;\n", f.Name)
		}
	})

	fn := funcName(program)
	_, err := fmt.Fprintf(out, `# Bash completion script for %[1]s
# Add this to your ~/.bashrc or ~/.bash_completion

_%[2]s_completions() {
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    case "${prev}" in
%[3]s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "%[4]s" -- "${cur}") )
    fi
}

complete -F _%[2]s_completions %[1]s
`, program, fn, cases.String(), strings.Join(opts, " "))
	return err
}

func generateZshCompletion(out io.Writer, program string, fs *flag.FlagSet, values map[string][]string) error {
	var args strings.Builder
	fs.VisitAll(func(f *flag.Flag) {
		usage := strings.NewReplacer("[", "(", "]", ")", "'", "").Replace(f.Usage)
		switch {
		case isBoolFlag(f):
			fmt.Fprintf(&args, "        '-%s[%s]' \\\n", f.Name, usage)
		case len(values[f.Name]) > 0:
			fmt.Fprintf(&args, "        '-%s[%s]:%s:(%s)' \\\n", f.Name, usage, f.Name, strings.Join(values[f.Name], " "))
		case f.Name == "config" || f.Name == "output" || f.Name == "o":
			fmt.Fprintf(&args, "        '-%s[%s]:file:_files' \\\n", f.Name, usage)
		default:
			fmt.Fprintf(&args, "        '-%s[%s]:%s:' \\\n", f.Name, usage, f.Name)
		}
	})

	fn := funcName(program)
	_, err := fmt.Fprintf(out, `#compdef %[1]s

# Zsh completion script for %[1]s
# Add this to your ~/.zshrc or place in $fpath

_%[2]s() {
    _arguments -s \
%[3]s        '*::'
}

_%[2]s "$@"
`, program, fn, args.String())
	return err
}

func generateFishCompletion(out io.Writer, program string, fs *flag.FlagSet, values map[string][]string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Fish completion script for %s\n", program)
	fmt.Fprintf(&b, "# Add this to ~/.config/fish/completions/%s.fish\n\n", program)
	fmt.Fprintf(&b, "complete -c %s -f\n", program)
	fs.VisitAll(func(f *flag.Flag) {
		desc := strings.ReplaceAll(f.Usage, "'", "")
		switch {
		case isBoolFlag(f):
			fmt.Fprintf(&b, "complete -c %s -o %s -d '%s'\n", program, f.Name, desc)
		case len(values[f.Name]) > 0:
			fmt.Fprintf(&b, "complete -c %s -o %s -d '%s' -xa '%s'\n", program, f.Name, desc, strings.Join(values[f.Name], " "))
		case f.Name == "config" || f.Name == "output" || f.Name == "o":
			fmt.Fprintf(&b, "complete -c %s -o %s -d '%s' -rF\n", program, f.Name, desc)
		default:
			fmt.Fprintf(&b, "complete -c %s -o %s -d '%s' -x\n", program, f.Name, desc)
		}
	})
	_, err := io.WriteString(out, b.String())
	return err
}
