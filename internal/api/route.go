package api

import (
	"VoteFight/internal/api/middleware"
	"VoteFight/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			userGroup.POST("/register", group.UserHandler.Register)
			userGroup.POST("/login", group.UserHandler.Login)
		}

		battleGroup := apiGroup.Group("/battles")
		{
			authOptGroup := battleGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("", group.BattleHandler.ListBattles)
				authOptGroup.GET("/:battle_id", group.BattleHandler.GetBattle)
				authOptGroup.GET("/:battle_id/statistics", group.VoteHandler.GetBattleStatistics)
			}

			authGroup := battleGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.BattleHandler.CreateBattle)
				authGroup.PUT("/:battle_id", group.BattleHandler.UpdateBattle)
				authGroup.DELETE("/:battle_id", group.BattleHandler.DeleteBattle)
			}

			staffGroup := battleGroup.Group("")
			staffGroup.Use(middleware.AuthMiddleware(), middleware.CheckStaff())
			{
				staffGroup.PUT("/:battle_id/feature", group.BattleHandler.FeatureBattle)
			}
		}

		// 投票入口对匿名开放，身份由 IP+指纹兜底
		voteGroup := apiGroup.Group("/votes")
		{
			authOptGroup := voteGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.POST("", group.VoteHandler.SubmitVote)
				authOptGroup.GET("/eligibility/:battle_id", group.VoteHandler.CheckEligibility)
			}

			authGroup := voteGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/history", group.VoteHandler.GetVoteHistory)
				authGroup.DELETE("/:vote_id", group.VoteHandler.DeleteVote)
			}
		}

		trendingGroup := apiGroup.Group("/trending")
		{
			trendingGroup.GET("", group.TrendingHandler.GetTrendingFeed)
			trendingGroup.GET("/categories", group.TrendingHandler.GetTrendingCategories)

			authGroup := trendingGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/personalized", group.TrendingHandler.GetPersonalizedTrending)
			}
		}

		actionGroup := apiGroup.Group("/battle/action")
		{
			actionGroup.GET("/comments/:battle_id", group.BattleActionHandler.ListComments)
			actionGroup.POST("/reports/:battle_id", group.BattleActionHandler.ReportBattle)

			authActionGroup := actionGroup.Group("")
			authActionGroup.Use(middleware.AuthMiddleware())
			{
				authActionGroup.POST("/likes/:battle_id", group.BattleActionHandler.LikeBattle)
				authActionGroup.POST("/shares/:battle_id", group.BattleActionHandler.ShareBattle)
				authActionGroup.GET("/state/:battle_id", group.BattleActionHandler.GetActionState)

				authActionGroup.POST("/comments", group.BattleActionHandler.CreateComment)
				authActionGroup.DELETE("/comments/:comment_id", group.BattleActionHandler.DeleteComment)
			}
		}
	}

	return r
}
