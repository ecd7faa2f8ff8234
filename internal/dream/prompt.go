package dream

import (
	"fmt"

	"github.com/fystack/lottery-simulator/pkg/common/config"
)

const closingPhrase = `🍀 Boa sorte!
Se um dia a sorte bater à sua porta,
lembre de nós do Martins da Sorte.
Se quiser apoiar o projeto, considere fazer uma doação ao site.`

const relayPrompt = `Você é o “Martins da Sorte – Sonhos da Sorte”.
Tarefa:
1) Interprete o sonho em português do Brasil (tom cultural/folclórico, educativo).
2) Identifique o ANIMAL do Jogo do Bicho mais associado ao sonho e entregue:
   - BICHO (nome)
   - GRUPO (1–25)
   - DEZENA (00–99)
   - CENTENA (000–999)
   - MILHAR (0000–9999)
3) Gere palpites para loterias da Caixa (somente números):
   - Mega-Sena (6 números 01–60)
   - Quina (5 números 01–80)
   - Lotofácil (15 números 01–25)
   - Timemania (10 números 01–80)
Formato de saída: JSON com as chaves:
{
  "titulo": string,
  "interpretacao": string,
  "bicho": { "nome": string, "grupo": number, "dezena": string, "centena": string, "milhar": string },
  "loterias": {
    "megasena": number[],
    "quina": number[],
    "lotofacil": number[],
    "timemania": number[]
  },
  "fraseFinal": string
}
Frase final (use exatamente):
"%s"
Sonho do usuário: """%s"""`

const structuredPrompt = `Você é um assistente cultural brasileiro especializado em interpretação POPULAR de sonhos (estilo almanaque).
O usuário sonhou com: "%s"

OBJETIVO:
Gerar uma interpretação simbólica, cultural e popular do sonho em formato JSON estrito.
Explique o significado, variações e apresente números tradicionalmente associados (Bicho e Loterias Caixa).

REGRAS:
- Use linguagem brasileira, popular e acolhedora.
- Não prometa ganhos. Uso recreativo e educativo.
- bicho.nome: nome do bicho associado (ex: Cachorro, Leão).
- bicho.grupo: grupo do bicho (1-25).
- bicho.dezenas: as 4 dezenas do grupo.
- bicho.dezena, bicho.centena, bicho.milhar: números da sorte baseados no sonho.
- loterias_caixa_sugestoes: Mega-Sena 6 números 1-60, Quina 5 números 1-80, Lotofácil 15 números 1-25, Timemania 10 números 1-80.`

func buildPrompt(variant config.DreamVariant, dream string) string {
	if variant == config.DreamVariantStructured {
		return fmt.Sprintf(structuredPrompt, dream)
	}
	return fmt.Sprintf(relayPrompt, closingPhrase, dream)
}

type schema map[string]any

func object(required []string, props schema) schema {
	return schema{"type": "OBJECT", "properties": props, "required": required}
}

func array(items schema) schema {
	return schema{"type": "ARRAY", "items": items}
}

var (
	str     = schema{"type": "STRING"}
	integer = schema{"type": "INTEGER"}
)

// responseSchema constrains structured output to the almanac shape.
var responseSchema = object(
	[]string{"titulo", "significado", "variacoes", "bicho", "loterias_caixa_sugestoes", "metodo", "aviso"},
	schema{
		"titulo":      str,
		"significado": str,
		"variacoes": array(object([]string{"titulo", "texto"}, schema{
			"titulo": str,
			"texto":  str,
		})),
		"bicho": object([]string{"nome", "grupo", "dezenas", "dezena", "centena", "milhar", "observacao"}, schema{
			"nome":       str,
			"grupo":      integer,
			"dezenas":    array(integer),
			"dezena":     integer,
			"centena":    integer,
			"milhar":     integer,
			"observacao": str,
		}),
		"loterias_caixa_sugestoes": object([]string{"mega_sena", "quina", "lotofacil", "timemania"}, schema{
			"mega_sena": array(integer),
			"quina":     array(integer),
			"lotofacil": array(integer),
			"timemania": array(integer),
		}),
		"metodo": str,
		"aviso":  str,
	},
)
