package service

import (
	"fmt"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
)

// ============================================================
// ROTEIRO DA ASHLEY
// ============================================================
//
// Todo o texto que a Ashley fala vive aqui. O texto É o produto:
// mudar uma vírgula muda a conversão, então nada de espalhar string
// pelo resto do serviço.

const (
	msgGreetingHello   = "Olá! Sou Ashley da CineflixPayment! 👋"
	msgGreetingPurpose = "Vou te ajudar a escolher o melhor plano pra você! 🎬"
	msgAskName         = "Qual é o seu nome? 😊"

	// Variante curta usada quando a sessão já chega com interesse num
	// plano (CTA da vitrine).
	msgAskNameShort = "Sou Ashley da CineflixPayment! 👋 Me diz seu nome pra eu te ajudar melhor?"

	msgAskGender      = "Pra eu te recomendar os melhores conteúdos: você é homem ou mulher? 🤔"
	msgAskGenderRetry = "Me diz: você é homem ou mulher? 😊"

	msgUpsellPitch = "Quer turbinar sua experiência com adicionais exclusivos? 🚀"
	msgPlansCTA    = "Confira os planos abaixo. O APP VITALÍCIO é a melhor oferta! 👇"

	msgCheckoutWhatsApp = "Perfeito! Vou te passar pro WhatsApp pra atendimento VIP! 💬"
	msgCheckoutPayment  = "🎉 Redirecionando pro pagamento seguro..."

	// Respostas de contingência da IA: default quando a resposta vem
	// vazia, fallback quando a chamada falha de vez.
	msgAIDefault  = "Me conta mais sobre o que você procura!"
	msgAIFallback = "Oi! Me conta o que você tá buscando que eu te ajudo! 😊"

	msgUserMale   = "Sou homem"
	msgUserFemale = "Sou mulher"

	msgRecsMale   = "Temos filmes de ação, futebol ao vivo com Champions e Libertadores, super-heróis da Marvel e DC, e toda a saga Velozes e Furiosos em 4K! 🎬"
	msgRecsFemale = "Temos os K-Dramas mais assistidos, séries românticas, reality shows como BBB, e as novelas turcas que todo mundo ama! 💕"
)

func msgPlanInterest(planName string) string {
	return fmt.Sprintf("Vi que você se interessou no %s! 🎬", planName)
}

func msgNicePleasure(name string) string {
	return fmt.Sprintf("Prazer em te conhecer, %s! 😊", name)
}

func msgRecsIntro(name string, gender domain.Gender) string {
	if gender == domain.GenderMale {
		return fmt.Sprintf("Show, %s! Olha o catálogo que eu separei pra você 🔥", name)
	}
	return fmt.Sprintf("Perfeito, %s! Preparei o conteúdo ideal pra você 💖", name)
}

func msgRecsList(gender domain.Gender) string {
	if gender == domain.GenderMale {
		return msgRecsMale
	}
	return msgRecsFemale
}

func msgPitchText(name string) string {
	return fmt.Sprintf("🎧 Escuta isso, %s! Imagina pagar assinatura todo mês sendo que nosso APP custa só R$ 49,90 ÚNICO e você tem acesso VITALÍCIO! Sem login, pagou, recebeu. Simples assim! 🚀", name)
}

// msgPitchSpeech é a versão NARRADA do pitch — mais longa que a
// exibida, com os números por extenso pra soar natural na voz.
func msgPitchSpeech(name string, gender domain.Gender) string {
	if gender == domain.GenderMale {
		return fmt.Sprintf("%s, imagina pagar uma assinatura todo mês, ou todo ano, sendo que com nosso APP você paga apenas uma vez, quarenta e nove reais e noventa centavos, e tem acesso vitalício! Todos os filmes de ação, futebol ao vivo, super-heróis, tudo em 4K! Sem login, pagou, recebeu o app. Simples assim!", name)
	}
	return fmt.Sprintf("%s, imagina pagar uma assinatura recorrente todo mês, ou ano, sendo que com nosso APP você paga apenas uma vez, quarenta e nove reais e noventa centavos, e tem acesso vitalício! Todos os K-Dramas, séries românticas, novelas, tudo! Sem senha, sem login, pagou, recebeu o app. Simples assim!", name)
}

func msgUserWantsPlan(planName string) string {
	return fmt.Sprintf("Quero o %s", planName)
}

func msgPlanChosen(name, planName string) string {
	return fmt.Sprintf("Excelente escolha, %s! O %s é perfeito! 🎉", name, planName)
}

func msgWinBackHold(name string) string {
	if name == "" {
		return "Espera! Não vai embora ainda! 😱"
	}
	return fmt.Sprintf("Espera, %s! Não vai embora ainda! 😱", name)
}

func msgWinBackCoupon(coupon string) string {
	return fmt.Sprintf("Usa o cupom %s e garante 10%% de desconto em qualquer plano! 🎁", coupon)
}

// msgWhatsAppSummary é o resumo do pedido que abre pré-preenchido no
// WhatsApp (antes do URL-encoding).
func msgWhatsAppSummary(planName string, planPrice float64, upsellNames string, total float64) string {
	return fmt.Sprintf("Olá! Vim pela Ashley. Quero comprar:\n📦 Plano: %s - R$ %.2f\n🎁 Adicionais: %s\n💰 Total: R$ %.2f",
		planName, planPrice, upsellNames, total)
}
