package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spigell/resume-matcher/internal/gate"
	"github.com/spigell/resume-matcher/internal/handoff"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/report"
	"github.com/spigell/resume-matcher/internal/resume"
	"github.com/spigell/resume-matcher/internal/scorer"
	"github.com/spigell/resume-matcher/internal/skills"
	"github.com/spigell/resume-matcher/internal/workflow"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptAnalyze      = "Analyze"
	PromptRetry        = "Retry"
	PromptChangeResume = "Change resume"
	PromptChangeSkills = "Change skills"
	PromptNewScan      = "New scan"
	PromptExit         = "Exit"
)

var errExit = errors.New("exit requested")

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a PDF resume against target skills",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalyzeFlags(analyzeCmd)

	viper.BindPFlag("report.format", analyzeCmd.Flags().Lookup("output"))
}

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("resume", "r", "", "path to the resume PDF")
	cmd.Flags().StringP("skills", "s", "", "comma separated target skills, e.g. \"Python, SQL, AWS\"")
	cmd.Flags().StringP("output", "o", "", "report format: human, json or yaml")
	cmd.Flags().BoolP("auto", "y", false, "submit without asking and exit after the report")
}

// session carries what one analyze invocation shares between scans.
type session struct {
	cfg    *Config
	client *scorer.Client
	logger *zap.Logger
	auto   bool

	// Flag values are used by the first scan only.
	resumePath string
	skillsText string
}

func newSession(cmd *cobra.Command, config *Config, client *scorer.Client, logger *zap.Logger) (*session, error) {
	auto, err := cmd.Flags().GetBool("auto")
	if err != nil {
		return nil, err
	}
	resumePath, err := cmd.Flags().GetString("resume")
	if err != nil {
		return nil, err
	}
	skillsText, err := cmd.Flags().GetString("skills")
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:        config,
		client:     client,
		logger:     logger,
		auto:       auto,
		resumePath: strings.TrimSpace(resumePath),
		skillsText: skillsText,
	}, nil
}

func analyze(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	client := scorer.New(logger, config.Scorer.URL)
	client.HTTPClient.Timeout = config.Scorer.Timeout
	client.SkillsEncoding = scorer.SkillsEncoding(config.Scorer.SkillsEncoding)
	if config.Scorer.UserAgent != "" {
		client.UserAgent = config.Scorer.UserAgent
	}

	s, err := newSession(cmd, config, client, logger)
	if err != nil {
		logger.Fatal("reading flags", zap.Error(err))
	}

	for {
		again, err := s.scan(ctx)
		if err != nil {
			if errors.Is(err, errExit) || ctx.Err() != nil {
				logger.Info("exiting", zap.String("reason", exitReason(ctx, err)))
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}

		if !again {
			return
		}
	}
}

// scan runs one analysis from input to report. It reports whether the user wants another one.
func (s *session) scan(ctx context.Context) (bool, error) {
	h := handoff.New()
	m := workflow.New(ctx, s.client, h, s.logger)
	defer m.Close()

	if err := s.applyFlags(m); err != nil {
		return false, err
	}

	action := PromptAnalyze
	for {
		if err := s.completeInputs(m); err != nil {
			return false, err
		}

		if !s.auto {
			var err error
			action, err = s.chooseAction(m)
			if err != nil {
				return false, err
			}
		}

		switch action {
		case PromptAnalyze, PromptRetry:
		case PromptChangeResume:
			if err := s.askResume(m); err != nil {
				return false, err
			}
			continue
		case PromptChangeSkills:
			if err := s.askSkills(m); err != nil {
				return false, err
			}
			continue
		case PromptExit:
			return false, errExit
		default:
			return false, fmt.Errorf("invalid action: %s", action)
		}

		err := s.submit(m)
		if err == nil {
			break
		}

		var subErr *scorer.SubmissionError
		if !errors.As(err, &subErr) || ctx.Err() != nil {
			return false, err
		}

		fmt.Fprintln(os.Stderr, color.RedString(subErr.Message()))
		if s.auto {
			return false, err
		}
	}

	return s.showReport(ctx, h)
}

func (s *session) applyFlags(m *workflow.Machine) error {
	path, text := s.resumePath, s.skillsText
	s.resumePath, s.skillsText = "", ""

	if path != "" {
		file, err := resume.Load(path)
		if err != nil {
			return err
		}
		if err := m.SelectFile(file); err != nil {
			return err
		}
	}

	if text != "" {
		if err := m.EditSkills(text); err != nil {
			return err
		}
	}

	return nil
}

// completeInputs asks for whatever still blocks the submission.
func (s *session) completeInputs(m *workflow.Machine) error {
	for !m.CanSubmit() {
		if err := gate.CheckFile(m.File()); err != nil {
			if s.auto {
				return fmt.Errorf("--resume: %w", err)
			}
			if m.File() != nil {
				fmt.Fprintln(os.Stderr, color.YellowString("%s is not a PDF file.", m.File().Name))
			}
			if err := s.askResume(m); err != nil {
				return err
			}
			continue
		}

		if _, err := gate.CheckSkills(m.SkillsText()); err != nil {
			if s.auto {
				return fmt.Errorf("--skills: %w", err)
			}
			if err := s.askSkills(m); err != nil {
				return err
			}
		}
	}

	return nil
}

// askResume keeps asking until a PDF is accepted.
func (s *session) askResume(m *workflow.Machine) error {
	pathPrompt := promptui.Prompt{
		Label: "Resume PDF path",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return gate.ErrNoFile
			}
			return nil
		},
	}

	for {
		path, err := pathPrompt.Run()
		if err != nil {
			return promptErr(err)
		}

		file, err := resume.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
			continue
		}

		err = m.DropFile(file)
		if errors.Is(err, gate.ErrNotPDF) {
			fmt.Fprintln(os.Stderr, color.RedString("Please upload a PDF file."))
			continue
		}
		return err
	}
}

func (s *session) askSkills(m *workflow.Machine) error {
	skillsPrompt := promptui.Prompt{
		Label:     "Target skills (comma separated)",
		Default:   m.SkillsText(),
		AllowEdit: true,
		Validate: func(input string) error {
			if len(skills.Parse(input)) == 0 {
				return gate.ErrNoSkills
			}
			return nil
		},
	}

	text, err := skillsPrompt.Run()
	if err != nil {
		return promptErr(err)
	}

	return m.EditSkills(text)
}

func (s *session) chooseAction(m *workflow.Machine) (string, error) {
	first := PromptAnalyze
	if m.Err() != nil {
		first = PromptRetry
	}

	name := m.File().Name
	pages, err := resume.PageCount(m.File())
	if err != nil {
		s.logger.Debug("counting resume pages", zap.String("file", name), zap.Error(err))
	} else {
		name = fmt.Sprintf("%s (%d pages)", name, pages)
	}

	actionPrompt := promptui.Select{
		Label: fmt.Sprintf("%s / %s", name, skills.Join(skills.Parse(m.SkillsText()))),
		Items: []string{first, PromptChangeResume, PromptChangeSkills, PromptExit},
	}

	_, action, err := actionPrompt.Run()
	if err != nil {
		return "", promptErr(err)
	}

	return action, nil
}

func (s *session) submit(m *workflow.Machine) error {
	sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = " Analyzing resume..."
	sp.Start()
	defer sp.Stop()

	started := time.Now()
	err := m.Submit()

	s.logger.Debug("submission finished",
		zap.String(logger.FieldAttempt, m.ID()),
		zap.Duration("took", time.Since(started)),
		zap.Bool("ok", err == nil),
	)

	return err
}

func (s *session) showReport(ctx context.Context, h *handoff.Handoff) (bool, error) {
	back := false
	view := report.NewView(h, report.NavigatorFunc(func() { back = true }), s.cfg.Report.RedirectDelay, s.logger)

	if err := view.Mount(ctx); err != nil {
		return false, err
	}

	if err := view.Render(os.Stdout, s.cfg.Report.Format); err != nil {
		return false, fmt.Errorf("rendering report: %w", err)
	}

	if back {
		return !s.auto, nil
	}

	if s.auto {
		return false, nil
	}

	nextPrompt := promptui.Select{
		Label: "What next?",
		Items: []string{PromptNewScan, PromptExit},
	}

	_, next, err := nextPrompt.Run()
	if err != nil {
		return false, promptErr(err)
	}

	return next == PromptNewScan, nil
}

func promptErr(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errExit
	}
	return err
}

func exitReason(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return "interrupted"
	}
	return err.Error()
}
