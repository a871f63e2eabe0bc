// Package logger provee el logger Zap del servicio, con scoping por contexto.
//
//   - Singleton: una sola instancia inicializada con Init() desde cmd/socialgate.
//   - Context scoping: cada request lleva un logger con request_id/method/path
//     y, una vez autenticado, el subject.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//
// Nunca se loguean tokens crudos ni secretos: usar TokenFingerprint y MaskEmail.
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("social.login"))
//	log.Info("account resolved", logger.Provider("kakao"), logger.SubjectID(id))
package logger
