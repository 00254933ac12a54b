package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"

	"github.com/google/uuid"
)

type movieRepo struct{ h handle }

func (r *movieRepo) Create(_ context.Context, movie *entity.Movie) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.movies[movie.ID]; ok {
			return fmt.Errorf("create movie %s: duplicate id", movie.Title)
		}
		st.movies[movie.ID] = *movie
		return nil
	})
}

func (r *movieRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Movie, error) {
	var found *entity.Movie
	r.h.read(func(st *state) {
		if m, ok := st.movies[id]; ok && !m.IsDeleted() {
			found = &m
		}
	})
	return found, nil
}

func (r *movieRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.Movie, error) {
	var movies []*entity.Movie
	r.h.read(func(st *state) {
		for _, m := range st.movies {
			if !m.IsDeleted() {
				movies = append(movies, &m)
			}
		}
	})

	sort.Slice(movies, func(i, j int) bool {
		if !movies[i].ReleaseDate.Equal(movies[j].ReleaseDate) {
			return movies[i].ReleaseDate.After(movies[j].ReleaseDate)
		}
		return movies[i].Title < movies[j].Title
	})

	return page(movies, limit, offset), nil
}

func (r *movieRepo) CountAll(_ context.Context) (int64, error) {
	var count int64
	r.h.read(func(st *state) {
		for _, m := range st.movies {
			if !m.IsDeleted() {
				count++
			}
		}
	})
	return count, nil
}

func (r *movieRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.h.write(func(st *state) error {
		m, ok := st.movies[id]
		if !ok || m.IsDeleted() {
			return fmt.Errorf("movie %s not found or already deleted", id)
		}
		now := time.Now()
		m.DeletedAt = &now
		m.UpdatedAt = now
		st.movies[id] = m
		return nil
	})
}

type cinemaRepo struct{ h handle }

func (r *cinemaRepo) Create(_ context.Context, cinema *entity.Cinema) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.cinemas[cinema.ID]; ok {
			return fmt.Errorf("create cinema %s: duplicate id", cinema.Name)
		}
		st.cinemas[cinema.ID] = *cinema
		return nil
	})
}

func (r *cinemaRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Cinema, error) {
	var found *entity.Cinema
	r.h.read(func(st *state) {
		if c, ok := st.cinemas[id]; ok && !c.IsDeleted() {
			found = &c
		}
	})
	return found, nil
}

func (r *cinemaRepo) IncrementHalls(_ context.Context, id uuid.UUID) error {
	return r.h.write(func(st *state) error {
		c, ok := st.cinemas[id]
		if !ok || c.IsDeleted() {
			return fmt.Errorf("cinema %s not found", id)
		}
		c.TotalHalls++
		c.UpdatedAt = time.Now()
		st.cinemas[id] = c
		return nil
	})
}

type hallRepo struct{ h handle }

func (r *hallRepo) Create(_ context.Context, hall *entity.Hall) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.halls[hall.ID]; ok {
			return fmt.Errorf("create hall %s: duplicate id", hall.Name)
		}
		if _, ok := st.cinemas[hall.CinemaID]; !ok {
			return fmt.Errorf("create hall %s: cinema %s does not exist", hall.Name, hall.CinemaID)
		}
		st.halls[hall.ID] = *hall
		return nil
	})
}

func (r *hallRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Hall, error) {
	var found *entity.Hall
	r.h.read(func(st *state) {
		if h, ok := st.halls[id]; ok && !h.IsDeleted() {
			found = &h
		}
	})
	return found, nil
}

// FindByIDForUpdate needs no row lock here, writers are already serialized.
func (r *hallRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Hall, error) {
	return r.FindByID(ctx, id)
}

type seatRepo struct{ h handle }

func (r *seatRepo) CreateBatch(_ context.Context, seats []*entity.Seat) error {
	return r.h.write(func(st *state) error {
		taken := map[string]struct{}{}
		for _, s := range st.seats {
			taken[s.HallID.String()+"/"+s.SeatNumber] = struct{}{}
		}
		for _, seat := range seats {
			if _, ok := st.halls[seat.HallID]; !ok {
				return fmt.Errorf("create batch seats: hall %s does not exist", seat.HallID)
			}
			key := seat.HallID.String() + "/" + seat.SeatNumber
			if _, ok := taken[key]; ok {
				return fmt.Errorf("create batch seats: seat %s already exists in hall", seat.SeatNumber)
			}
			taken[key] = struct{}{}
		}
		for _, seat := range seats {
			st.seats[seat.ID] = *seat
		}
		return nil
	})
}

func (r *seatRepo) FindByHallID(_ context.Context, hallID uuid.UUID) ([]*entity.Seat, error) {
	var seats []*entity.Seat
	r.h.read(func(st *state) {
		for _, s := range st.seats {
			if s.HallID == hallID && !s.IsDeleted() {
				seats = append(seats, &s)
			}
		}
	})
	sortSeats(seats)
	return seats, nil
}

func (r *seatRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Seat, error) {
	seats := []*entity.Seat{}
	r.h.read(func(st *state) {
		for _, id := range ids {
			if s, ok := st.seats[id]; ok {
				seats = append(seats, &s)
			}
		}
	})
	sortSeats(seats)
	return seats, nil
}

func sortSeats(seats []*entity.Seat) {
	sort.Slice(seats, func(i, j int) bool { return seats[i].SeatNumber < seats[j].SeatNumber })
}

type showRepo struct{ h handle }

func (r *showRepo) Create(_ context.Context, show *entity.Show) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.shows[show.ID]; ok {
			return fmt.Errorf("create show: duplicate id %s", show.ID)
		}
		if _, ok := st.movies[show.MovieID]; !ok {
			return fmt.Errorf("create show: movie %s does not exist", show.MovieID)
		}
		if _, ok := st.halls[show.HallID]; !ok {
			return fmt.Errorf("create show: hall %s does not exist", show.HallID)
		}
		st.shows[show.ID] = *show
		return nil
	})
}

func (r *showRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Show, error) {
	var found *entity.Show
	r.h.read(func(st *state) {
		if s, ok := st.shows[id]; ok && !s.IsDeleted() {
			found = &s
		}
	})
	return found, nil
}

func (r *showRepo) Find(_ context.Context, filter repository.ShowFilter) ([]*entity.Show, error) {
	return r.collect(func(s *entity.Show) bool {
		switch {
		case filter.MovieID != nil && s.MovieID != *filter.MovieID:
			return false
		case filter.HallID != nil && s.HallID != *filter.HallID:
			return false
		case filter.From != nil && s.StartTime.Before(*filter.From):
			return false
		case filter.To != nil && !s.StartTime.Before(*filter.To):
			return false
		}
		return true
	}), nil
}

func (r *showRepo) FindOverlapping(_ context.Context, hallID uuid.UUID, start, end time.Time) ([]*entity.Show, error) {
	return r.collect(func(s *entity.Show) bool {
		return s.HallID == hallID && s.Overlaps(start, end)
	}), nil
}

func (r *showRepo) collect(match func(s *entity.Show) bool) []*entity.Show {
	var shows []*entity.Show
	r.h.read(func(st *state) {
		for _, s := range st.shows {
			if !s.IsDeleted() && match(&s) {
				shows = append(shows, &s)
			}
		}
	})
	sort.Slice(shows, func(i, j int) bool { return shows[i].StartTime.Before(shows[j].StartTime) })
	return shows
}

func (r *showRepo) CountByMovieID(_ context.Context, movieID uuid.UUID) (int64, error) {
	var count int64
	r.h.read(func(st *state) {
		for _, s := range st.shows {
			if s.MovieID == movieID && !s.IsDeleted() {
				count++
			}
		}
	})
	return count, nil
}

func (r *showRepo) UpdateBasePrice(_ context.Context, id uuid.UUID, basePrice float64) error {
	return r.h.write(func(st *state) error {
		s, ok := st.shows[id]
		if !ok || s.IsDeleted() {
			return fmt.Errorf("show %s not found", id)
		}
		s.BasePrice = basePrice
		s.UpdatedAt = time.Now()
		st.shows[id] = s
		return nil
	})
}

func (r *showRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.h.write(func(st *state) error {
		s, ok := st.shows[id]
		if !ok || s.IsDeleted() {
			return fmt.Errorf("show %s not found or already deleted", id)
		}
		now := time.Now()
		s.DeletedAt = &now
		s.UpdatedAt = now
		st.shows[id] = s
		return nil
	})
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
