package diagnosis

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const divider = "-----------------------"

var (
	headerLine    = regexp.MustCompile(`^[^\p{L}]*Medical Report$`)
	topLine       = regexp.MustCompile(`^[^\p{L}]*High Possibility: (.*) \(([^()]*)\) (?:->|→) ([0-9]+(?:\.[0-9]+)?)% \| Severity: (.*)$`)
	secondaryLine = regexp.MustCompile(`^•\s*(.*) \(([^()]*)\) (?:->|→) ([0-9]+(?:\.[0-9]+)?)% \| Severity: (.*)$`)
	accuracyLine  = regexp.MustCompile(`^[^\p{L}]*Model Accuracy: ([0-9]+(?:\.[0-9]+)?)%$`)
)

// Text renders the report with the fixed report template. Probabilities and
// accuracy are percentages with two decimals.
func (r *Report) Text() string {
	var b strings.Builder

	b.WriteString("Medical Report\n")
	b.WriteString(divider + "\n")
	fmt.Fprintf(&b, "Patient Name: %s\n", r.PatientName)
	fmt.Fprintf(&b, "Patient Email: %s\n", r.PatientEmail)
	fmt.Fprintf(&b, "Symptoms: %s\n", r.Symptoms)
	b.WriteString("\n")

	for i, c := range r.Candidates {
		prefix := "• "
		if i == 0 {
			prefix = "High Possibility: "
		}
		fmt.Fprintf(&b, "%s%s (%s) -> %.2f%% | Severity: %s\n",
			prefix, c.Label, c.RawLabel, c.Probability*100, c.Severity)
	}

	fmt.Fprintf(&b, "\nModel Accuracy: %.2f%%", r.ModelAccuracy*100)
	return b.String()
}

// Parse recovers a Report from its rendered text. Probabilities carry the
// two-decimal precision of the text. Decorated reports using emoji prefixes
// and "→" arrows are accepted.
func Parse(text string) (*Report, error) {
	var (
		r        Report
		fields   = map[string]bool{}
		inSymp   bool
		sawTop   bool
		sawAcc   bool
		sawTitle bool
	)

	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		if line == "" {
			inSymp = false
			continue
		}

		switch {
		case !sawTitle && headerLine.MatchString(line):
			sawTitle = true
		case line == divider:
		case strings.HasPrefix(line, "Patient Name:"):
			r.PatientName = field(line, "Patient Name:")
			fields["name"] = true
		case strings.HasPrefix(line, "Patient Email:"):
			r.PatientEmail = field(line, "Patient Email:")
			fields["email"] = true
		case strings.HasPrefix(line, "Symptoms:"):
			r.Symptoms = field(line, "Symptoms:")
			fields["symptoms"] = true
			inSymp = true
			continue
		case topLine.MatchString(line):
			c, err := candidate(topLine.FindStringSubmatch(line))
			if err != nil {
				return nil, err
			}
			r.Candidates = append([]Candidate{c}, r.Candidates...)
			sawTop = true
		case secondaryLine.MatchString(line):
			c, err := candidate(secondaryLine.FindStringSubmatch(line))
			if err != nil {
				return nil, err
			}
			r.Candidates = append(r.Candidates, c)
		case accuracyLine.MatchString(line):
			acc, err := percent(accuracyLine.FindStringSubmatch(line)[1])
			if err != nil {
				return nil, err
			}
			r.ModelAccuracy = acc
			sawAcc = true
		case inSymp:
			r.Symptoms += "\n" + line
			continue
		default:
			return nil, fmt.Errorf("%w: unexpected line %q", ErrMalformedReport, line)
		}
		inSymp = false
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}

	switch {
	case !sawTitle:
		return nil, fmt.Errorf("%w: missing title", ErrMalformedReport)
	case !fields["name"], !fields["email"], !fields["symptoms"]:
		return nil, fmt.Errorf("%w: missing patient fields", ErrMalformedReport)
	case !sawTop:
		return nil, fmt.Errorf("%w: missing top candidate", ErrMalformedReport)
	case !sawAcc:
		return nil, fmt.Errorf("%w: missing model accuracy", ErrMalformedReport)
	}

	return &r, nil
}

func field(line, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, prefix))
}

func candidate(m []string) (Candidate, error) {
	p, err := percent(m[3])
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{
		Label:       m[1],
		RawLabel:    m[2],
		Probability: p,
		Severity:    m[4],
	}, nil
}

func percent(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedReport, err)
	}
	return v / 100, nil
}
