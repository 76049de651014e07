package runtime

import (
	"github.com/aretw0/brownian/pkg/domain"
	"github.com/aretw0/brownian/pkg/model"
	"github.com/aretw0/brownian/pkg/ports"
	"github.com/stretchr/testify/mock"
)

// MockSimulator records calls against ports.Simulator.
type MockSimulator struct {
	mock.Mock
}

func (m *MockSimulator) SpeciesCount() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockSimulator) SpeciesName(i int) (string, error) {
	args := m.Called(i)
	return args.String(0), args.Error(1)
}

func (m *MockSimulator) Boundaries() ([]float64, []float64, error) {
	args := m.Called()
	return args.Get(0).([]float64), args.Get(1).([]float64), args.Error(2)
}

func (m *MockSimulator) TimeStep() float64 {
	return m.Called().Get(0).(float64)
}

func (m *MockSimulator) Time() float64 {
	return m.Called().Get(0).(float64)
}

func (m *MockSimulator) DeclareOutput(name string) error {
	return m.Called(name).Error(0)
}

func (m *MockSimulator) BindCommand(cmd string, trigger domain.Trigger) error {
	return m.Called(cmd, trigger).Error(0)
}

func (m *MockSimulator) RunCommand(cmd string) error {
	return m.Called(cmd).Error(0)
}

func (m *MockSimulator) ClearSpecies(name string) error {
	return m.Called(name).Error(0)
}

func (m *MockSimulator) AddSpeciesUniform(name string, count int, low, high []float64) error {
	return m.Called(name, count, low, high).Error(0)
}

func (m *MockSimulator) MoleculeCount(name string) (int, error) {
	args := m.Called(name)
	return args.Int(0), args.Error(1)
}

func (m *MockSimulator) Run(stop, dt float64) error {
	return m.Called(stop, dt).Error(0)
}

func (m *MockSimulator) ReadOutput(name string, clear bool) ([]domain.Row, error) {
	args := m.Called(name, clear)
	rows, _ := args.Get(0).([]domain.Row)
	return rows, args.Error(1)
}

func (m *MockSimulator) Close() error {
	return m.Called().Error(0)
}

// factoryFor hands out a fixed simulator regardless of the model.
func factoryFor(sim ports.Simulator) ports.SimulatorFactory {
	return ports.SimulatorFactoryFunc(func(*model.Model, ports.LoadOptions) (ports.Simulator, error) {
		return sim, nil
	})
}

// newRedGreenMock wires the calls every Open makes: species empty/red/green in a 10x10 box.
func newRedGreenMock(low, high []float64) *MockSimulator {
	sim := new(MockSimulator)
	sim.On("SpeciesCount").Return(3, nil)
	sim.On("SpeciesName", 0).Return("empty", nil)
	sim.On("SpeciesName", 1).Return("red", nil)
	sim.On("SpeciesName", 2).Return("green", nil)
	sim.On("Boundaries").Return(low, high, nil)
	sim.On("TimeStep").Return(0.01)
	sim.On("DeclareOutput", mock.Anything).Return(nil)
	sim.On("BindCommand", mock.Anything, mock.Anything).Return(nil)
	sim.On("Close").Return(nil)
	return sim
}
