package cli

import apperrors "github.com/agbru/fibdrv/internal/errors"

var _ apperrors.ColorProvider = CLIColorProvider{}

// CLIColorProvider implements apperrors.ColorProvider with the current theme.
type CLIColorProvider struct{}

func (CLIColorProvider) Yellow() string { return ColorYellow() }
func (CLIColorProvider) Reset() string  { return ColorReset() }
