// Package logging provides structured logging using uber/zap.
//
// Production mode writes JSON, development mode writes colored console
// output. The level is atomic: SetLevel, or PUT on the Level handler, changes
// it for the logger and every component logger derived from it.
//
//	logger := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	store := tree.NewStore(tree.WithLogger(logger.Component("tree")))
//	router.GET("/log/level", gin.WrapH(logger.Level()))
//	router.PUT("/log/level", gin.WrapH(logger.Level()))
package logging
