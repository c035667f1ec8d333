package wire

import (
	"VoteFight/internal/api"
	"VoteFight/internal/api/handler"
	"VoteFight/internal/job"
	"VoteFight/internal/pkg/cron"
	"VoteFight/internal/repository"
	"VoteFight/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router  *gin.Engine
	DB      *gorm.DB
	CronMgr *cron.Manager
}

func BuildApplication(db *gorm.DB) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	battleRepo := repository.NewBattleRepo(db)
	elementRepo := repository.NewElementRepo(db)
	voteRepo := repository.NewVoteRepo(db)
	actionRepo := repository.NewBattleActionRepo(db)

	metricService := service.NewBattleMetricService(battleRepo, elementRepo, voteRepo, actionRepo)
	trendingService := service.NewTrendingService(battleRepo, voteRepo)
	userService := service.NewUserService(userRepo)
	battleService := service.NewBattleService(battleRepo, userRepo, trendingService)
	voteService := service.NewVoteService(voteRepo, battleRepo, elementRepo, userRepo, metricService, trendingService)
	actionService := service.NewBattleActionService(actionRepo, battleRepo, userRepo, metricService)

	handlers := &api.HandlersGroup{
		UserHandler:         handler.NewUserHandler(userService),
		BattleHandler:       handler.NewBattleHandler(battleService),
		VoteHandler:         handler.NewVoteHandler(voteService),
		TrendingHandler:     handler.NewTrendingHandler(trendingService),
		BattleActionHandler: handler.NewBattleActionHandler(actionService),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(job.NewTrendingSweepJob(trendingService))

	return &ApplicationContainer{
		Router:  router,
		DB:      db,
		CronMgr: cronMgr,
	}, nil
}
