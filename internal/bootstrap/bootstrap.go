package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	notifyinadapter "shotwatch/internal/modules/notify/adapter/in"
	notifyoutadapter "shotwatch/internal/modules/notify/adapter/out"
	notifydto "shotwatch/internal/modules/notify/dto"
	notifyout "shotwatch/internal/modules/notify/port/out"
	notifyservice "shotwatch/internal/modules/notify/service"
	notifyusecase "shotwatch/internal/modules/notify/usecase"
	renderoutadapter "shotwatch/internal/modules/render/adapter/out"
	renderout "shotwatch/internal/modules/render/port/out"
	renderservice "shotwatch/internal/modules/render/service"
	renderusecase "shotwatch/internal/modules/render/usecase"
	reportinadapter "shotwatch/internal/modules/report/adapter/in"
	reportoutadapter "shotwatch/internal/modules/report/adapter/out"
	reportdto "shotwatch/internal/modules/report/dto"
	reportservice "shotwatch/internal/modules/report/service"
	reportusecase "shotwatch/internal/modules/report/usecase"
	trackinginadapter "shotwatch/internal/modules/tracking/adapter/in"
	trackingoutadapter "shotwatch/internal/modules/tracking/adapter/out"
	trackingdto "shotwatch/internal/modules/tracking/dto"
	trackingservice "shotwatch/internal/modules/tracking/service"
	trackingusecase "shotwatch/internal/modules/tracking/usecase"
	"shotwatch/internal/platform/clock"
	"shotwatch/internal/platform/config"
	"shotwatch/internal/platform/id"
	"shotwatch/internal/platform/logging"
	"shotwatch/internal/platform/ssm"
	uiapp "shotwatch/internal/ui/app"
)

var log = logging.MustGetLogger("bootstrap")

// pollPad extends the poll window past now for sources with a skewed clock.
const pollPad = 10 * time.Minute

type App struct {
	TrackingCLI trackinginadapter.CLIHandler
	NotifyCLI   notifyinadapter.CLIHandler
	ReportCLI   reportinadapter.CLIHandler

	Clock        clock.Clock
	Zone         clock.Zone
	PollInterval time.Duration
	SinkKind     string
	EncoderName  string

	subjects      []config.Subject
	endRetryLimit time.Duration
	sourceErr     error
	closers       []io.Closer
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.UUID{}
	zone := clock.NewZone(cfg.Timezone.Name, cfg.Timezone.OffsetHours)

	app := &App{
		Clock:         clk,
		Zone:          zone,
		PollInterval:  cfg.PollInterval,
		SinkKind:      cfg.Sink.Kind,
		subjects:      cfg.Subjects,
		endRetryLimit: cfg.EndRetryLimit,
	}

	// status, history and the dashboard never reach the source, so missing
	// source credentials only fail the commands that poll or report.
	client, err := ssm.NewClient(cfg.Source.BaseURL, cfg.Source.Token, nil)
	if err != nil {
		app.sourceErr = err
	}

	encoder, encoderName := newEncoder(cfg.Render.Encoder)
	app.EncoderName = encoderName
	painter, err := renderoutadapter.NewOverlayPainter(renderoutadapter.DefaultFontSize)
	if err != nil {
		return nil, fmt.Errorf("new overlay painter: %w", err)
	}
	renderUC := renderusecase.NewInteractor(renderservice.NewPipeline(
		renderservice.Options{
			OutputDir:   cfg.OutputDir,
			TargetWidth: cfg.Render.TargetWidth,
			FPS:         cfg.Render.FPS,
			NoteMaxLen:  cfg.Render.NoteMaxLen,
			Zone:        zone,
		},
		renderoutadapter.NewHTTPImageFetcher(nil),
		painter,
		encoder,
	))

	sink, directory, err := app.newSink(cfg.Sink, ids)
	if err != nil {
		return nil, err
	}
	ledger, err := notifyoutadapter.NewSQLiteLedger(cfg.DBPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("new delivery ledger: %w", err)
	}
	app.track(ledger)
	notifyUC := notifyusecase.NewInteractor(
		notifyservice.NewDispatcher(sink, ledger, clk, ids, zone),
		ledger,
		directory,
	)

	trackingUC := trackingusecase.NewInteractor(
		trackingservice.NewDetector(clk),
		trackingoutadapter.NewSSMSource(client),
		trackingoutadapter.NewFileStateStore(cfg.StatePath),
		renderUC,
		notifyUC,
	)

	reportUC := reportusecase.NewInteractor(
		reportservice.NewSummaryService(
			reportoutadapter.NewSSMFeed(client),
			reportoutadapter.NewJournalStore(cfg.JournalDir, zone),
			clk,
			zone,
		),
		renderUC,
		notifyUC,
		cfg.Render.DailyMaxFrames,
	)

	app.TrackingCLI = trackinginadapter.NewCLIHandler(trackingUC)
	app.NotifyCLI = notifyinadapter.NewCLIHandler(notifyUC)
	app.ReportCLI = reportinadapter.NewCLIHandler(reportUC)
	return app, nil
}

// Close releases the ledger and any broker connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// PollNow runs one detection cycle over the current UTC day. The window also
// reaches back past the end retry limit plus two poll intervals, so an end
// still waiting for its screenshots at midnight stays visible.
func (a *App) PollNow(ctx context.Context) (trackingdto.PollOutput, error) {
	if a.sourceErr != nil {
		return trackingdto.PollOutput{}, a.sourceErr
	}
	now := a.Clock.Now()
	window := clock.TodaySoFar(now, pollPad).ReachingBack(now, a.pollLookback())
	return a.TrackingCLI.Poll(ctx, a.TrackingSubjects(), window.From, window.To, a.endRetryLimit)
}

func (a *App) Status(ctx context.Context) ([]trackingdto.SessionStatusOutput, error) {
	return a.TrackingCLI.Status(ctx)
}

func (a *App) History(ctx context.Context, limit int) ([]notifydto.DeliveryOutput, error) {
	return a.NotifyCLI.History(ctx, limit)
}

// DailyFor reports on day; a zero day means yesterday.
func (a *App) DailyFor(ctx context.Context, day time.Time) (reportdto.DailyOutput, error) {
	if a.sourceErr != nil {
		return reportdto.DailyOutput{}, a.sourceErr
	}
	return a.ReportCLI.Daily(ctx, a.ReportSubjects(), day)
}

func (a *App) TrackingSubjects() []trackingdto.Subject {
	out := make([]trackingdto.Subject, len(a.subjects))
	for i, s := range a.subjects {
		out[i] = trackingdto.Subject{ID: s.ID, DisplayName: s.DisplayName()}
	}
	return out
}

func (a *App) ReportSubjects() []reportdto.Subject {
	out := make([]reportdto.Subject, len(a.subjects))
	for i, s := range a.subjects {
		out[i] = reportdto.Subject{ID: s.ID, DisplayName: s.DisplayName()}
	}
	return out
}

// SubjectNames maps subject ids to display names.
func (a *App) SubjectNames() map[string]string {
	names := make(map[string]string, len(a.subjects))
	for _, s := range a.subjects {
		names[s.ID] = s.DisplayName()
	}
	return names
}

// ParseDay reads YYYY-MM-DD as a calendar day in the configured zone.
func (a *App) ParseDay(value string) (time.Time, error) {
	loc := a.Zone.Loc
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation("2006-01-02", value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", value, err)
	}
	return day, nil
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app, app, app, uiapp.Options{
		Names:    app.SubjectNames(),
		Stamp:    func(d notifydto.DeliveryOutput) string { return app.Zone.Stamp(d.SentAt) },
		DayParse: app.ParseDay,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// ─── wiring helpers ──────────────────────────────────────────────────────────

func (a *App) pollLookback() time.Duration {
	return a.endRetryLimit + 2*a.PollInterval
}

func (a *App) track(v any) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
}

func (a *App) newSink(cfg config.Sink, ids id.Generator) (notifyout.Sink, notifyout.Directory, error) {
	switch cfg.Kind {
	case "whatsapp":
		sink, err := notifyoutadapter.NewWhatsAppSink(notifyoutadapter.WhatsAppOptions{
			BaseURL:       cfg.WhatsApp.BaseURL,
			PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
			Token:         cfg.WhatsApp.Token,
			To:            cfg.WhatsApp.To,
		}, nil)
		if err != nil {
			return nil, nil, err
		}
		return sink, sink, nil
	case "amqp":
		sink, err := notifyoutadapter.NewAMQPSink(cfg.AMQP.URL, cfg.AMQP.Exchange, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("new amqp sink: %w", err)
		}
		a.track(sink)
		return sink, nil, nil
	default:
		return notifyoutadapter.NewLogSink(), nil, nil
	}
}

// newEncoder honours the configured encoder, dropping to GIF when ffmpeg is
// not on PATH.
func newEncoder(name string) (renderout.Encoder, string) {
	if name == "gif" {
		return renderoutadapter.NewGIFEncoder(), "gif"
	}
	binary, err := renderoutadapter.LookFFmpeg()
	if err != nil {
		log.Warningf("%v; rendering GIF timelapses instead", err)
		return renderoutadapter.NewGIFEncoder(), "gif"
	}
	return renderoutadapter.NewFFmpegEncoder(binary), "ffmpeg"
}
