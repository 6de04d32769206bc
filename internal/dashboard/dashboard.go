// Package dashboard renders a live terminal UI for an in-flight write run.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/jdockerty/gn/internal/output"
	"github.com/jdockerty/gn/internal/stats"
)

const historyLen = 100

// RunConfig holds run parameters for display in the summary panel.
type RunConfig struct {
	Target      string
	Protocol    string
	Policy      string
	Rate        int
	PayloadSize int
}

// Dashboard renders live run statistics with termui widgets.
type Dashboard struct {
	stats        *stats.Statistics
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	grid          *ui.Grid
	summaryPara   *widgets.Paragraph
	countersPara  *widgets.Paragraph
	latencyPara   *widgets.Paragraph
	successGauge  *widgets.Gauge
	rateSparkle   *widgets.SparklineGroup
	rateHistory   []float64
	lastBytes     uint64
	lastTick      time.Time
	startTime     time.Time
	runConfig     RunConfig
}

// New creates a Dashboard over the run's Statistics. shutdownFunc is invoked
// when the user quits with q or Ctrl-C.
func New(st *stats.Statistics, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dashboard{
		stats:        st,
		ctx:          ctx,
		cancel:       cancel,
		shutdownFunc: shutdownFunc,
		rateHistory:  make([]float64, 0, historyLen),
		startTime:    time.Now(),
		lastTick:     time.Now(),
		runConfig:    cfg,
	}

	d.initWidgets()
	d.setupGrid()
	return d, nil
}

func (d *Dashboard) initWidgets() {
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Run Summary"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	d.countersPara = widgets.NewParagraph()
	d.countersPara.Title = "Counters"
	d.countersPara.Text = "Waiting for data..."
	d.countersPara.BorderStyle.Fg = ui.ColorCyan

	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Attempt Latency"
	d.latencyPara.Text = "Min: 0ms\nMean: 0ms\nP50: 0ms\nP90: 0ms\nP99: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	d.successGauge = widgets.NewGauge()
	d.successGauge.Title = "Success Rate"
	d.successGauge.Percent = 0
	d.successGauge.BarColor = ui.ColorGreen
	d.successGauge.BorderStyle.Fg = ui.ColorCyan
	d.successGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	sparkline := widgets.NewSparkline()
	sparkline.Title = "B/s"
	sparkline.LineColor = ui.ColorBlue
	sparkline.Data = []float64{0}
	d.rateSparkle = widgets.NewSparklineGroup(sparkline)
	d.rateSparkle.Title = "Throughput"
	d.rateSparkle.BorderStyle.Fg = ui.ColorCyan
}

func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)
	d.grid.Set(
		ui.NewRow(0.2,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.2,
			ui.NewCol(1.0, d.successGauge),
		),
		ui.NewRow(0.3,
			ui.NewCol(0.6, d.countersPara),
			ui.NewCol(0.4, d.latencyPara),
		),
		ui.NewRow(0.3,
			ui.NewCol(1.0, d.rateSparkle),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()
	d.render()

	for {
		select {
		case <-d.ctx.Done():
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Stop() cancels the context; keep draining until then.
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

// update refreshes all widget data from the run statistics.
func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := time.Since(d.startTime)
	snap := d.stats.Snapshot(elapsed)

	now := time.Now()
	interval := now.Sub(d.lastTick)
	var instRate float64
	if interval > 0 {
		instRate = float64(snap.TotalBytes-d.lastBytes) / interval.Seconds()
	}
	d.lastBytes = snap.TotalBytes
	d.lastTick = now

	d.rateHistory = append(d.rateHistory, instRate)
	if len(d.rateHistory) > historyLen {
		d.rateHistory = d.rateHistory[1:]
	}
	d.rateSparkle.Sparklines[0].Data = d.rateHistory
	d.rateSparkle.Title = fmt.Sprintf("Throughput | Current: %s", output.FormatRate(snap.TotalBytes, elapsed))

	d.successGauge.Percent = int(snap.SuccessPercent)
	d.successGauge.Label = fmt.Sprintf("%.1f%% (%d/%d)", snap.SuccessPercent, snap.Successes, snap.Attempts)

	d.summaryPara.Text = fmt.Sprintf(
		"Target: %s://%s\nPolicy: %s | Payload: %d bytes | Rate: %s\nElapsed: %s | Press q to quit",
		d.runConfig.Protocol,
		d.runConfig.Target,
		d.runConfig.Policy,
		d.runConfig.PayloadSize,
		formatRateLimit(d.runConfig.Rate),
		elapsed.Round(time.Second),
	)

	d.countersPara.Text = fmt.Sprintf(
		"Bytes Written:     %d\nAttempts:          %d\nSuccessful:        %d\nFailed:            %d",
		snap.TotalBytes,
		snap.Attempts,
		snap.Successes,
		snap.Failures,
	)

	d.latencyPara.Text = fmt.Sprintf(
		"Min:  %.2fms\nMean: %.2fms\nP50:  %.2fms\nP90:  %.2fms\nP99:  %.2fms",
		snap.MinLatencyMs,
		snap.MeanLatencyMs,
		snap.P50LatencyMs,
		snap.P90LatencyMs,
		snap.P99LatencyMs,
	)
}

func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()
	ui.Render(d.grid)
}

func formatRateLimit(rps int) string {
	if rps <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%d/s", rps)
}
