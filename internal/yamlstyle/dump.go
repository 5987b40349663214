package yamlstyle

import (
	"bytes"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dump encodes value as YAML and re-applies the block sequence offset
// recorded in style, writing the result to w.
func Dump(w io.Writer, value any, style Style) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(value); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	offset := style.Indentation.dominant()
	_, err := w.Write(reindentSequences(buf.Bytes(), offset))
	return err
}

// DumpFile dumps value as YAML to path, overwriting it, in the given style.
func DumpFile(path string, value any, style Style) error {
	var buf bytes.Buffer
	if err := Dump(&buf, value, style); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// reindentSequences shifts every block-sequence item (and the content
// nested beneath it) right by offset columns. yaml.v3 always emits
// sequences flush with their parent key (offset 0), so offset <= 0 is a
// no-op.
func reindentSequences(data []byte, offset int) []byte {
	if offset <= 0 {
		return data
	}
	trailingNewline := bytes.HasSuffix(data, []byte("\n"))
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	out := reindentBlock(lines, 0, len(lines), offset)
	joined := strings.Join(out, "\n")
	if trailingNewline {
		joined += "\n"
	}
	return []byte(joined)
}

func reindentBlock(lines []string, start, end, offset int) []string {
	pad := strings.Repeat(" ", offset)
	var out []string

	i := start
	for i < end {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			out = append(out, line)
			i++
			continue
		}

		col := indentOf(line)
		j := i + 1
		for j < end {
			if strings.TrimSpace(lines[j]) == "" {
				j++
				continue
			}
			if indentOf(lines[j]) <= col {
				break
			}
			j++
		}

		nested := reindentBlock(lines, i+1, j, offset)
		if isDashLine(line) {
			out = append(out, pad+line)
			for _, l := range nested {
				if strings.TrimSpace(l) == "" {
					out = append(out, l)
				} else {
					out = append(out, pad+l)
				}
			}
		} else {
			out = append(out, line)
			out = append(out, nested...)
		}
		i = j
	}

	return out
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func isDashLine(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return trimmed == "-" || strings.HasPrefix(trimmed, "- ")
}
