package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/venue --output domain/venue --outpkg venuemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name GameSaver --dir ../usecase --output usecase --outpkg usecasemock --filename game_saver_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name SocialAggregator --dir ../usecase --output usecase --outpkg usecasemock --filename social_aggregator_mock.go
