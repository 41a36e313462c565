package repositories

import "github.com/google/wire"

// ProviderSet exposes the repository constructors to Wire.
var ProviderSet = wire.NewSet(
	NewTranscriptRepository,
	NewTranslationRepository,
	NewStatusRepository,
	NewResultsRepository,
	NewTranscriptArchive,
)
