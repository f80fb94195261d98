package diffusion_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/presdiff/internal/diffusion"
)

var _ = Describe("Stepper", func() {
	var (
		grid   diffusion.Grid
		params diffusion.Params
	)

	BeforeEach(func() {
		var err error
		grid, err = diffusion.NewGrid(0, 1, 0, 0.5, 0.1, 0.1)
		Expect(err).NotTo(HaveOccurred())
		params = diffusion.Params{
			Alpha:         0.1,
			Rho:           1000,
			G:             9.81,
			Dt:            0.0005,
			Initial:       10,
			InnerBoundary: 50000,
			OuterBoundary: 10000,
		}
	})

	It("starts from a uniform field", func() {
		s := diffusion.NewStepper(grid, params)
		f := s.Current()
		Expect(f.Min()).To(Equal(params.Initial))
		Expect(f.Max()).To(Equal(params.Initial))
		Expect(s.StepsTaken()).To(BeZero())
	})

	Context("after stepping", func() {
		var s *diffusion.Stepper

		BeforeEach(func() {
			s = diffusion.NewStepper(grid, params)
			s.Run(20)
		})

		It("holds the Dirichlet values on both radial boundaries", func() {
			f := s.Current()
			for j := 0; j < grid.Nz; j++ {
				Expect(f.At(0, j)).To(Equal(params.InnerBoundary))
				Expect(f.At(grid.Nr-1, j)).To(Equal(params.OuterBoundary))
			}
		})

		It("stays finite for a stable configuration", func() {
			Expect(diffusion.StabilityNumber(grid, params)).To(BeNumerically("<=", 0.5))
			Expect(s.Current().IsFinite()).To(BeTrue())
		})

		It("raises the interior above the initial value", func() {
			Expect(s.Current().At(1, 1)).To(BeNumerically(">", params.Initial))
		})

		It("is deterministic", func() {
			other := diffusion.NewStepper(grid, params)
			other.Run(20)
			Expect(other.Current().Equal(s.Current())).To(BeTrue())
		})
	})

	DescribeTable("continuing a run matches a single longer run",
		func(first, second int) {
			a := diffusion.NewStepper(grid, params)
			a.Run(first)
			a.Run(second)

			b := diffusion.NewStepper(grid, params)
			b.Run(first + second)

			Expect(a.Current().Equal(b.Current())).To(BeTrue())
			Expect(a.StepsTaken()).To(Equal(b.StepsTaken()))
		},
		Entry("0 then 1", 0, 1),
		Entry("1 then 1", 1, 1),
		Entry("5 then 1", 5, 1),
		Entry("3 then 4", 3, 4),
	)
})
