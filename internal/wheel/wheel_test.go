package wheel

import (
    "testing"

    "github.com/barbergo/loyalty-wheel/internal/model"
)

// fixedSource returns a predetermined value so draws are deterministic.
type fixedSource struct{ v float64 }

func (f fixedSource) Spin() float64 { return f.v }

func testPool() []model.Prize {
    return []model.Prize{
        {ID: 1, Title: "A", Chance: 40},
        {ID: 2, Title: "B", Chance: 30},
        {ID: 3, Title: "C", Chance: 25},
    }
}

func TestPick(t *testing.T) {
    pool := testPool() // sum 95, leaves a 5% uncovered tail

    t.Run("Test deterministic selection per band", func(t *testing.T) {
        cases := []struct {
            r    float64
            want string
        }{
            {10, "A"},
            {45, "B"},
            {75, "C"},
            {40, "A"},  // boundary: r equal to cumulative stays in the band
            {96, "A"},  // past the covered range falls back to the first prize
            {99.9, "A"},
            {0, "A"},
        }
        for _, tc := range cases {
            got, err := Pick(pool, tc.r)
            if err != nil {
                t.Fatalf("Pick(r=%v): unexpected error %v", tc.r, err)
            }
            if got.Title != tc.want {
                t.Errorf("Pick(r=%v) = %s, want %s", tc.r, got.Title, tc.want)
            }
        }
    })

    t.Run("Test empty wheel", func(t *testing.T) {
        if _, err := Pick(nil, 10); err != ErrEmptyWheel {
            t.Fatalf("Expected ErrEmptyWheel, got %v", err)
        }
    })

    t.Run("Test single prize always wins", func(t *testing.T) {
        single := []model.Prize{{ID: 7, Title: "Only", Chance: 1}}
        for _, r := range []float64{0, 0.5, 1, 50, 99.99} {
            got, err := Pick(single, r)
            if err != nil {
                t.Fatalf("Pick(r=%v): unexpected error %v", r, err)
            }
            if got.ID != 7 {
                t.Errorf("Pick(r=%v) = prize %d, want 7", r, got.ID)
            }
        }
    })

    t.Run("Test full pool covers every value", func(t *testing.T) {
        full := []model.Prize{
            {ID: 1, Title: "10% off", Chance: 60},
            {ID: 2, Title: "Free item", Chance: 40},
        }
        if got, _ := Pick(full, 59.99); got.ID != 1 {
            t.Errorf("r=59.99 should win the first prize, got %d", got.ID)
        }
        if got, _ := Pick(full, 60.01); got.ID != 2 {
            t.Errorf("r=60.01 should win the second prize, got %d", got.ID)
        }
    })
}

func TestDraw(t *testing.T) {
    pool := testPool()

    t.Run("Test draw uses the source value", func(t *testing.T) {
        got, err := Draw(pool, fixedSource{v: 45})
        if err != nil {
            t.Fatalf("Expected no error, but got %v", err)
        }
        if got.Title != "B" {
            t.Errorf("Expected prize B, but got %s", got.Title)
        }
    })

    t.Run("Test production source stays in range", func(t *testing.T) {
        src := NewSource()
        for i := 0; i < 1000; i++ {
            v := src.Spin()
            if v < 0 || v >= 100 {
                t.Fatalf("Spin() = %v, want value in [0,100)", v)
            }
        }
    })
}
