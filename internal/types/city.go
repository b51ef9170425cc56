package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/hashicorp/go-multierror"

	"github.com/FACorreiaa/go-city-registry/internal/api"
)

const (
	MinCityNameLength = 2
	MaxCityNameLength = 255
	MinPopulation     = 1
)

// City is a single record held by the registry.
type City struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Population int    `json:"population"`
}

// CitySeed is an initial record loaded at startup.
type CitySeed struct {
	Name       string `mapstructure:"name"`
	Population int    `mapstructure:"population"`
}

// CityInput is the payload accepted by create and update.
type CityInput struct {
	ID         *int   `json:"id,omitempty"` // ignored: the path id is authoritative on update
	Name       string `json:"name"`
	Population int    `json:"population"`
}

// Validate reports every field violation, joined with "; ".
// The returned error wraps api.ErrValidation.
func (in CityInput) Validate() error {
	var result *multierror.Error

	name := strings.TrimSpace(in.Name)
	switch {
	case govalidator.IsNull(name):
		result = multierror.Append(result, errors.New("name is required"))
	case !govalidator.StringLength(name, strconv.Itoa(MinCityNameLength), strconv.Itoa(MaxCityNameLength)):
		result = multierror.Append(result, fmt.Errorf("name must contain between %d and %d characters", MinCityNameLength, MaxCityNameLength))
	}

	if in.Population < MinPopulation {
		result = multierror.Append(result, fmt.Errorf("population must be greater than or equal to %d", MinPopulation))
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = joinViolations
	return fmt.Errorf("%w: %s", api.ErrValidation, result.Error())
}

func joinViolations(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
