package printsettings

import "go.uber.org/fx"

var Module = fx.Module("printsettings",
	fx.Provide(
		NewFileStore,
		func(s *FileStore) Store { return s },
		func(s *FileStore) Loader { return s },
	),
)
