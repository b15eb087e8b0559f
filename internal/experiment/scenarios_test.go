package experiment_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/experiment"
	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/workspace"
)

func run(cfg *config.Config) (*nav.Result, error) {
	exp, err := experiment.New(cfg, experiment.NewRegistry())
	Expect(err).NotTo(HaveOccurred())
	return exp.Run(context.Background())
}

func expectGrowingTrajectory(r *nav.Result) {
	Expect(r.Trajectory).NotTo(BeEmpty())
	Expect(r.Trajectory).To(HaveLen(r.Steps + 1))
	Expect(r.Times).To(HaveLen(len(r.Trajectory)))
	for i := 1; i < len(r.Times); i++ {
		Expect(r.Times[i]).To(BeNumerically(">", r.Times[i-1]))
	}
}

var _ = Describe("Carrot chase", func() {
	It("converges to the goal from an offset start heading south", func() {
		cfg := config.DefaultConfig()
		cfg.Law = "carrot"
		cfg.Params = map[string]float64{"delta": 2.0, "k": 1.0}
		cfg.HeadingDeg = -90
		cfg.Workspace.Init = &geom.Point{X: 30, Y: 10}

		r, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Outcome).To(Equal(nav.OutcomeReached))
		Expect(r.Steps).To(BeNumerically("<=", 1000))
		Expect(r.Final().Point().Dist(geom.Pt(45, 45))).To(BeNumerically("<", 0.5))
		expectGrowingTrajectory(r)
	})

	It("still closes in with the exact arc integrator", func() {
		cfg := config.GetPreset("carrot", "default")
		cfg.Integrator = "arc"

		r, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())
		start := cfg.InitialPose().Point().Dist(cfg.Workspace.Goal)
		Expect(r.FinalDist).To(BeNumerically("<", start))
	})
})

var _ = Describe("NLGL", func() {
	It("terminates within the cap with a non-empty trajectory", func() {
		cfg := config.GetPreset("nlgl", "default")

		r, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Steps).To(BeNumerically("<=", cfg.MaxSteps))
		Expect(r.Outcome).To(BeElementOf(nav.OutcomeReached, nav.OutcomeStepLimit, nav.OutcomeNoTarget))
		expectGrowingTrajectory(r)
	})

	It("stops with no target when the capture circle misses the path", func() {
		cfg := config.GetPreset("nlgl", "default")
		cfg.Workspace.Init = &geom.Point{X: 30, Y: 10}

		r, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Outcome).To(Equal(nav.OutcomeNoTarget))
		Expect(r.Steps).To(Equal(0))
		Expect(r.Trajectory).To(HaveLen(1))
	})
})

var _ = Describe("Bug0", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.GetPreset("bug0", "default")
	})

	It("reaches the goal or stops at the step cap without failing", func() {
		r, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Outcome).To(BeElementOf(nav.OutcomeReached, nav.OutcomeStepLimit))
		Expect(r.Steps).To(BeNumerically("<=", 5000))
		if r.Outcome == nav.OutcomeReached {
			Expect(r.FinalDist).To(BeNumerically("<=", 0.4))
		}
	})

	It("keeps every visited point out of the obstacles", func() {
		r, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())

		ws, err := cfg.BuildWorkspace()
		Expect(err).NotTo(HaveOccurred())
		for _, p := range r.Trajectory {
			Expect(ws.IsValidPoint(p)).To(BeTrue(), "point %v is in collision", p)
		}
		Expect(r.Metrics["wall_follow_ratio"]).To(BeNumerically(">", 0))
	})

	It("holds position when boxed in", func() {
		cfg.Workspace.Obstacles = []workspace.Obstacle{workspace.Circle(5, 5, 3)}
		cfg.Workspace.Init = &geom.Point{X: 5, Y: 5}
		cfg.MaxSteps = 20

		exp, err := experiment.New(cfg, experiment.NewRegistry())
		Expect(err).NotTo(HaveOccurred())
		r, err := exp.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Outcome).To(Equal(nav.OutcomeStepLimit))
		Expect(r.Final().Point()).To(Equal(geom.Pt(5, 5)))
		Expect(r.Metrics["wall_follow_ratio"]).To(Equal(1.0))
	})
})

var _ = Describe("Vector field", func() {
	It("converges onto the line and reaches the goal", func() {
		cfg := config.GetPreset("vectorfield", "default")
		cfg.MaxSteps = 2000

		r, err := run(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Outcome).To(Equal(nav.OutcomeReached))

		line := geom.Line{From: cfg.Workspace.Start, To: cfg.Workspace.Goal}
		tail := r.Trajectory[len(r.Trajectory)*3/4:]
		for _, p := range tail {
			Expect(math.Abs(line.CrossTrack(p))).To(BeNumerically("<", 1.0))
		}
	})
})

var _ = Describe("Presets", func() {
	for _, law := range config.Laws() {
		law := law
		for _, name := range config.ListPresets(law) {
			name := name
			It("runs "+law+"/"+name+" to a clean finish", func() {
				r, err := run(config.GetPreset(law, name))
				Expect(err).NotTo(HaveOccurred())
				Expect(r.Outcome).To(BeElementOf(nav.OutcomeReached, nav.OutcomeStepLimit, nav.OutcomeNoTarget))
			})
		}
	}
})

var _ = Describe("Cancellation", func() {
	It("returns the partial trajectory with the context error", func() {
		exp, err := experiment.New(config.GetPreset("carrot", "default"), experiment.NewRegistry())
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		r, err := exp.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(r.Outcome).To(Equal(nav.OutcomeCanceled))
		Expect(r.Trajectory).To(HaveLen(1))
	})
})
